package model

import "testing"

func TestRawInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		input   RawInput
		wantErr bool
	}{
		{
			name: "valid manual input",
			input: RawInput{
				Text:             "2kg apples",
				Source:           SourceManual,
				SourceConfidence: 1.0,
			},
			wantErr: false,
		},
		{
			name: "valid ocr input with partial confidence",
			input: RawInput{
				Text:             "MILK 1L 2.49",
				Source:           SourceOCR,
				SourceConfidence: 0.82,
			},
			wantErr: false,
		},
		{
			name: "unknown source",
			input: RawInput{
				Text:             "bread",
				Source:           Source("voice"),
				SourceConfidence: 1.0,
			},
			wantErr: true,
			errMsg:  `unknown input source "voice"`,
		},
		{
			name: "confidence above one",
			input: RawInput{
				Text:             "bread",
				Source:           SourceManual,
				SourceConfidence: 1.5,
			},
			wantErr: true,
			errMsg:  "source confidence must be between 0.0 and 1.0, got 1.50",
		},
		{
			name: "negative confidence",
			input: RawInput{
				Text:             "bread",
				Source:           SourceOCR,
				SourceConfidence: -0.1,
			},
			wantErr: true,
			errMsg:  "source confidence must be between 0.0 and 1.0, got -0.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Validate() error = nil, want error containing %q", tt.errMsg)
				} else if tt.errMsg != "" && err.Error() != tt.errMsg {
					t.Errorf("Validate() error = %v, want %v", err.Error(), tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
			}
		})
	}
}

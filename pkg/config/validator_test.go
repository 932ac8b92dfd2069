package config

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestValidatorValidate(t *testing.T) {
	type tunables struct {
		BaseGrowth float64 `validate:"gte=0"`
		Driver     string  `validate:"required,oneof=memory postgres"`
		Workers    int     `validate:"min=1,max=1024"`
	}

	tests := []struct {
		name    string
		cfg     any
		wantErr bool
	}{
		{"valid", tunables{BaseGrowth: 0.5, Driver: "memory", Workers: 4}, false},
		{"negative growth", tunables{BaseGrowth: -1, Driver: "memory", Workers: 4}, true},
		{"unknown driver", tunables{Driver: "mysql", Workers: 4}, true},
		{"missing driver", tunables{Workers: 4}, true},
		{"too many workers", tunables{Driver: "postgres", Workers: 5000}, true},
		{"nil", nil, true},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.cfg != nil && !errors.Is(err, ErrValidationFailed) {
				t.Errorf("Validate() error = %v, want ErrValidationFailed", err)
			}
		})
	}
}

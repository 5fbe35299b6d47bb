package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	type testCase struct {
		in      string
		want    int64
		wantErr bool
	}

	tests := []testCase{
		{in: "35.000", want: 35000},
		{in: "$ 35.000", want: 35000},
		{in: "1.234,50", want: 1235},
		{in: "1.234,49", want: 1234},
		{in: "-5.000", want: -5000},
		{in: "(500)", want: -500},
		{in: "20000", want: 20000},
		{in: "", wantErr: true},
		{in: "$", wantErr: true},
		{in: "doce", wantErr: true},
		{in: "35.5", wantErr: true},
		{in: "1,234.50", wantErr: true},
		{in: "35.0000", wantErr: true},
		{in: "35.", wantErr: true},
		{in: "1.234.567", want: 1234567},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseAmount(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

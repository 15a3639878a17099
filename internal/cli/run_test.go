package cli

import (
	"reflect"
	"testing"
)

func TestParseInputArgs(t *testing.T) {
	tests := []struct {
		name    string
		inputs  []string
		want    map[string]string
		wantErr bool
	}{
		{
			name:   "empty",
			inputs: nil,
			want:   map[string]string{},
		},
		{
			name:   "trims key and value",
			inputs: []string{" Distance = 25 ", "Layer=/data/roads.gpkg"},
			want:   map[string]string{"Distance": "25", "Layer": "/data/roads.gpkg"},
		},
		{
			name:   "value keeps later equals signs",
			inputs: []string{"Expr=a=b"},
			want:   map[string]string{"Expr": "a=b"},
		},
		{
			name:   "last value wins",
			inputs: []string{"A=1", "A=2"},
			want:   map[string]string{"A": "2"},
		},
		{
			name:    "missing equals",
			inputs:  []string{"Distance"},
			wantErr: true,
		},
		{
			name:    "empty key",
			inputs:  []string{" =5"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInputArgs(tt.inputs)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseInputArgs(%v) expected error", tt.inputs)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseInputArgs(%v) error = %v", tt.inputs, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseInputArgs(%v) = %v, want %v", tt.inputs, got, tt.want)
			}
		})
	}
}

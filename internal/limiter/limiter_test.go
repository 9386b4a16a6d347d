package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func streams(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "zero config", cfg: Config{}},
		{name: "cap only", cfg: Config{MaxStreams: 5}},
		{name: "offset only", cfg: Config{Offset: 2}},
		{name: "cap with offset", cfg: Config{MaxStreams: 5, Offset: 2}},
		{name: "tail with cap", cfg: Config{MaxStreams: 3, Tail: true}},
		{name: "negative cap", cfg: Config{MaxStreams: -1}, wantErr: true},
		{name: "negative offset", cfg: Config{Offset: -1}, wantErr: true},
		{name: "tail without cap", cfg: Config{Tail: true}, wantErr: true},
		{name: "tail with offset", cfg: Config{MaxStreams: 2, Offset: 1, Tail: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigApply(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		in   []any
		want []any
	}{
		{name: "inactive passes through", cfg: Config{}, in: streams(3), want: streams(3)},
		{name: "cap keeps first N", cfg: Config{MaxStreams: 2}, in: streams(5), want: []any{float64(0), float64(1)}},
		{name: "offset skips", cfg: Config{Offset: 3}, in: streams(5), want: []any{float64(3), float64(4)}},
		{name: "offset then cap", cfg: Config{MaxStreams: 2, Offset: 1}, in: streams(5), want: []any{float64(1), float64(2)}},
		{name: "tail keeps last N", cfg: Config{MaxStreams: 2, Tail: true}, in: streams(5), want: []any{float64(3), float64(4)}},
		{name: "tail larger than input", cfg: Config{MaxStreams: 9, Tail: true}, in: streams(2), want: streams(2)},
		{name: "offset past end", cfg: Config{Offset: 10}, in: streams(3), want: []any{}},
		{name: "cap larger than input", cfg: Config{MaxStreams: 10}, in: streams(2), want: streams(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Apply(tt.in))
		})
	}
}

func TestConfigIsActive(t *testing.T) {
	assert.False(t, Config{}.IsActive())
	assert.True(t, Config{MaxStreams: 1}.IsActive())
	assert.True(t, Config{Offset: 1}.IsActive())
}

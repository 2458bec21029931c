package cmd

import (
	"strings"
	"testing"

	"github.com/kikuuuty/ddsconv/internal/config"
	"github.com/kikuuuty/ddsconv/internal/encoder"
	"github.com/kikuuuty/ddsconv/internal/profile"
	"github.com/spf13/pflag"
)

func TestConvertSettingsFlagsOverrideConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Compression.Format = "bc3"
	cfg.Compression.Quality = "slow"
	cfg.Processing.Workers = 3

	if err := convertCmd.ParseFlags([]string{"--format", "bc6h", "-m", "--srgb"}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		convertCmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	})

	got, _, err := convertSettings(convertCmd, cfg)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if got.Target != encoder.BC6H {
		t.Errorf("target: got %s, want bc6h", got.Target)
	}
	if got.Level != profile.Slow {
		t.Errorf("level from config: got %s, want slow", got.Level)
	}
	if !got.GenerateMips || got.MipLevels != 0 {
		t.Errorf("mips: got %v/%d, want true/0", got.GenerateMips, got.MipLevels)
	}
	if !got.SRGB || got.Workers != 3 {
		t.Errorf("srgb=%v workers=%d", got.SRGB, got.Workers)
	}
}

func TestConvertSettingsMipLevelForms(t *testing.T) {
	tests := []struct {
		args []string
		want int
	}{
		{[]string{"-m"}, 0},
		{[]string{"-m3"}, 3},
		{[]string{"-m=2"}, 2},
		{[]string{"--mip-levels"}, 0},
		{[]string{"--mip-levels=5"}, 5},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			t.Cleanup(func() {
				convertCmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
			})
			if err := convertCmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			got, _, err := convertSettings(convertCmd, config.DefaultConfig())
			if err != nil {
				t.Fatalf("settings: %v", err)
			}
			if !got.GenerateMips || got.MipLevels != tt.want {
				t.Errorf("mips: got %v/%d, want true/%d", got.GenerateMips, got.MipLevels, tt.want)
			}
		})
	}
}

func TestConvertSettingsRejectsUnknownNames(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Compression.Format = "etc2"
	if _, _, err := convertSettings(convertCmd, cfg); err == nil {
		t.Error("expected error for unknown format")
	}
	cfg = config.DefaultConfig()
	cfg.Compression.Quality = "insane"
	if _, _, err := convertSettings(convertCmd, cfg); err == nil {
		t.Error("expected error for unknown quality")
	}
}

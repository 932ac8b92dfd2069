package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lk2023060901/pigfarm/app/pigbot/internal/gameerr"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/growth"
	"github.com/lk2023060901/pigfarm/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTunablesProviderSet(t *testing.T) {
	p, err := NewTunablesProvider(growth.DefaultTunables(), logger.NewNoop())
	require.NoError(t, err)

	next := growth.Tunables{BaseGrowth: 1, RankFactor: 0.25, WeightFactor: 2}
	require.NoError(t, p.Set(next))
	assert.Equal(t, next, p.Get())

	err = p.Set(growth.Tunables{BaseGrowth: -1})
	assert.Equal(t, gameerr.KindValidation, gameerr.KindOf(err))
	assert.Equal(t, next, p.Get())
}

func TestNewTunablesProviderRejectsInvalid(t *testing.T) {
	_, err := NewTunablesProvider(growth.Tunables{WeightFactor: -0.5}, nil)
	assert.Error(t, err)
}

func TestTunablesWatchReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	write := func(content string) {
		t.Helper()
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("game:\n  base_growth: 0.5\n")

	p, err := NewTunablesProvider(growth.DefaultTunables(), logger.NewNoop())
	require.NoError(t, err)
	w, err := p.Watch(path)
	require.NoError(t, err)
	defer w.Close()

	// 文件中缺省的系数取默认值
	write("game:\n  base_growth: 0.75\n  rank_factor: 0.1\n")
	w.Reload()
	want := growth.Tunables{BaseGrowth: 0.75, RankFactor: 0.1, WeightFactor: 0.5}
	if got := p.Get(); got != want {
		t.Errorf("Get() after reload = %+v, want %+v", got, want)
	}

	for _, content := range []string{"game:\n  base_growth: -3\n", "", "modules: {}\n"} {
		write(content)
		w.Reload()
		if got := p.Get(); got != want {
			t.Errorf("reload of %q replaced tunables: Get() = %+v", content, got)
		}
	}
}

package envconf_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/suri14878/sqlexec/envconf"
)

const sample = `
[dev_postgres]
host = localhost
port = 5432
user = app
password = secret
dbname = appdb

[prod_oracle]
host = db.internal
port = 1521
user = app
password = hunter2
service_name = APPSVC

[dev_oracle]
host = localhost
port = 1521
user = app
password = secret
sid = XE
`

func writeConfig(t *testing.T) *envconf.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.ini")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	cfg, err := envconf.Load(path)
	require.NoError(t, err)
	return cfg
}

func TestParamsByEnvironmentAndBackend(t *testing.T) {
	cfg := writeConfig(t)

	p, err := cfg.Params("dev", "postgres")
	require.NoError(t, err)
	require.Equal(t, envconf.Params{
		Host:     "localhost",
		Port:     5432,
		User:     "app",
		Password: "secret",
		DBName:   "appdb",
	}, p)

	p, err = cfg.Params("prod", "oracle")
	require.NoError(t, err)
	require.Equal(t, "APPSVC", p.ServiceName)
	require.Empty(t, p.SID)

	p, err = cfg.Params("dev", "oracle")
	require.NoError(t, err)
	require.Equal(t, "XE", p.SID)
}

func TestParamsMissingSection(t *testing.T) {
	cfg := writeConfig(t)

	_, err := cfg.Params("staging", "postgres")
	require.Error(t, err)
	require.Contains(t, err.Error(), "staging_postgres")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := envconf.Load(filepath.Join(t.TempDir(), "absent.ini"))
	require.Error(t, err)
}

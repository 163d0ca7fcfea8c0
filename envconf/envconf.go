// Package envconf loads database connection parameters from an INI file
// keyed by environment and backend. Each section is named
// "<environment>_<backend>", so one file describes every deployment
// target:
//
//	[dev_postgres]
//	host = localhost
//	port = 5432
//	user = app
//	password = secret
//	dbname = appdb
//
//	[prod_oracle]
//	host = db.internal
//	port = 1521
//	user = app
//	password = secret
//	service_name = APPSVC
package envconf

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// Params holds the connection parameters for one environment/backend
// pair. SID and ServiceName are Oracle-specific; other backends ignore
// them.
type Params struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SID         string
	ServiceName string
}

// Config is a loaded parameter file.
type Config struct {
	file *ini.File
}

// Load reads an INI parameter file.
func Load(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("envconf: %w", err)
	}
	return &Config{file: f}, nil
}

// Params returns the parameters for the "<environment>_<backend>"
// section, e.g. ("dev", "postgres"). Missing sections are an error;
// missing keys within a section are zero values.
func (c *Config) Params(environment, backend string) (Params, error) {
	name := environment + "_" + backend
	sec, err := c.file.GetSection(name)
	if err != nil {
		return Params{}, fmt.Errorf("envconf: no section %q", name)
	}
	return Params{
		Host:        sec.Key("host").String(),
		Port:        sec.Key("port").MustInt(0),
		User:        sec.Key("user").String(),
		Password:    sec.Key("password").String(),
		DBName:      sec.Key("dbname").String(),
		SID:         sec.Key("sid").String(),
		ServiceName: sec.Key("service_name").String(),
	}, nil
}

// Package mysql is the MySQL backend adapter, built on the go-sql-driver
// through the dbsql bridge.
package mysql

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strconv"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/suri14878/sqlexec"
	"github.com/suri14878/sqlexec/dbsql"
	"github.com/suri14878/sqlexec/envconf"
)

// Connector opens MySQL connections from envconf parameters.
type Connector struct {
	params envconf.Params
}

// NewConnector builds a connector from connection parameters.
func NewConnector(params envconf.Params) *Connector {
	return &Connector{params: params}
}

// Connect opens a single pinned MySQL session.
func (c *Connector) Connect(ctx context.Context) (sqlexec.Conn, error) {
	p := c.params
	cfg := gomysql.NewConfig()
	cfg.User = p.User
	cfg.Passwd = p.Password
	cfg.Net = "tcp"
	port := p.Port
	if port == 0 {
		port = 3306
	}
	cfg.Addr = net.JoinHostPort(p.Host, strconv.Itoa(port))
	cfg.DBName = p.DBName
	return dbsql.Open(ctx, "mysql", cfg.FormatDSN(), "mysql", isConnErr)
}

func isConnErr(err error) bool {
	if errors.Is(err, gomysql.ErrInvalidConn) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

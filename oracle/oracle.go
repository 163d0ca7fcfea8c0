// Package oracle is the Oracle backend adapter, built on the pure-Go
// go-ora driver through the dbsql bridge.
package oracle

import (
	"context"
	"errors"
	"net"
	"strings"

	go_ora "github.com/sijms/go-ora/v2"

	"github.com/suri14878/sqlexec"
	"github.com/suri14878/sqlexec/dbsql"
	"github.com/suri14878/sqlexec/envconf"
)

// Connector opens Oracle connections from envconf parameters. Either
// ServiceName or SID must be set; ServiceName wins when both are.
type Connector struct {
	params envconf.Params
}

// NewConnector builds a connector from connection parameters.
func NewConnector(params envconf.Params) *Connector {
	return &Connector{params: params}
}

// Connect opens a single pinned Oracle session.
func (c *Connector) Connect(ctx context.Context) (sqlexec.Conn, error) {
	p := c.params
	service := p.ServiceName
	opts := map[string]string{}
	if service == "" && p.SID != "" {
		opts["SID"] = p.SID
	}
	dsn := go_ora.BuildUrl(p.Host, p.Port, service, p.User, p.Password, opts)
	return dbsql.Open(ctx, "oracle", dsn, "oracle", isConnErr)
}

// Oracle errors that mean the session or listener is gone. The driver
// reports them as formatted ORA- strings, so we match on the code.
var connCodes = []string{
	"ORA-03113", // end-of-file on communication channel
	"ORA-03114", // not connected to Oracle
	"ORA-12170", // connect timeout
	"ORA-12537", // connection closed
	"ORA-12541", // no listener
}

func isConnErr(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := err.Error()
	for _, code := range connCodes {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return false
}

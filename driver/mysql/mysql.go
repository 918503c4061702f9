// Package mysql adapts github.com/go-sql-driver/mysql into a
// buildaquerydriver.RetryConnector and a ready-to-use *sql.DB, grounded on
// the teacher's "mysql" case in database.NewDbFromConfig including its
// wsrep_sync_wait session hook. MariaDB reuses this adapter unchanged since
// it speaks the same wire protocol and driver.
package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"net"

	buildaquerydriver "github.com/AnirudhB3000/buildaquery/driver"
	"github.com/AnirudhB3000/buildaquery/logging"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

// Config is the subset of connection parameters this adapter needs.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// WsrepSyncWait, if nonzero, is set as the wsrep_sync_wait session
	// variable on every new connection — a Galera-cluster causality-check
	// knob. Zero disables the hook entirely.
	WsrepSyncWait int

	Logger   *logging.Logger
	InitConn buildaquerydriver.InitConnFunc
}

// Open builds a *sql.DB backed by a buildaquerydriver.RetryConnector
// wrapping go-sql-driver/mysql.
func Open(c Config) (*sql.DB, string, error) {
	cfg := gomysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.DBName = c.Database
	cfg.Params = map[string]string{"sql_mode": "'TRADITIONAL,ANSI_QUOTES'"}

	var addr string
	if net.ParseIP(c.Host) == nil && len(c.Host) > 0 && c.Host[0] == '/' {
		cfg.Net = "unix"
		cfg.Addr = c.Host
		addr = "(" + cfg.Addr + ")"
	} else {
		cfg.Net = "tcp"
		port := c.Port
		if port == 0 {
			port = 3306
		}
		cfg.Addr = net.JoinHostPort(c.Host, fmt.Sprint(port))
		addr = cfg.Addr
	}

	connector, err := gomysql.NewConnector(cfg)
	if err != nil {
		return nil, "", errors.Wrap(err, "build mysql connector")
	}

	initConn := c.InitConn
	if c.WsrepSyncWait > 0 {
		userInit := initConn
		initConn = func(ctx context.Context, conn driver.Conn) error {
			if userInit != nil {
				if err := userInit(ctx, conn); err != nil {
					return err
				}
			}
			return setSessionVariableIfExists(ctx, conn, "wsrep_sync_wait", fmt.Sprint(c.WsrepSyncWait))
		}
	}

	retryConn := buildaquerydriver.NewRetryConnector(connector, c.Logger, initConn, 0)
	return sql.OpenDB(retryConn), addr, nil
}

// setSessionVariableIfExists sets name to value for the session, silently
// ignoring an "unknown system variable" failure — the same tolerance the
// teacher's unsafeSetSessionVariableIfExists applies so a single-node MySQL
// server (which lacks Galera's wsrep_sync_wait) doesn't fail every connect.
func setSessionVariableIfExists(ctx context.Context, conn driver.Conn, name, value string) error {
	execer, ok := conn.(driver.ExecerContext)
	if !ok {
		return nil
	}

	_, err := execer.ExecContext(ctx, fmt.Sprintf("SET SESSION %s = %s", name, value), nil)
	if err != nil {
		var mysqlErr *gomysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1193 { // unknown system variable
			return nil
		}
		return err
	}
	return nil
}

// Register installs logger as go-sql-driver/mysql's package-level logger,
// matching the teacher's database.Register.
func Register(logger *logging.Logger) {
	_ = gomysql.SetLogger(funcLogger(func(v ...interface{}) { logger.Debug(v...) }))
}

type funcLogger func(v ...interface{})

func (f funcLogger) Print(v ...interface{}) { f(v) }

package db

import (
	"net"
	"time"

	"KPlayer/config"

	"github.com/go-sql-driver/mysql"
)

// DSN builds the MySQL data source name for cfg.
func DSN(cfg *config.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	// report matched rows so an update that changes nothing still counts
	mc.ClientFoundRows = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

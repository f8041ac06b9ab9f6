package mysql

import (
	"sync"

	"github.com/jmoiron/sqlx"
)

var (
	once   sync.Once
	sqlxDB *sqlx.DB

	slaveOnce sync.Once
	slaveSQLX *sqlx.DB
)

func SQLX() *sqlx.DB {
	once.Do(func() {
		if DB() != nil {
			sqlxDB = sqlx.NewDb(DB(), "mysql")
		}
	})
	return sqlxDB
}

// ReadSQLX 返回查询用句柄：配置了从库走从库，否则回退主库。
// 仅用于可容忍复制延迟的只读查询（后台检索、局信息展示等）。
func ReadSQLX() *sqlx.DB {
	slaveOnce.Do(func() {
		if SlaveDB() != nil {
			slaveSQLX = sqlx.NewDb(SlaveDB(), "mysql")
		}
	})
	if slaveSQLX != nil {
		return slaveSQLX
	}
	return SQLX()
}

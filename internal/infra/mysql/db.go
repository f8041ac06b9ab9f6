package mysql

import "database/sql"

// UseDB: 注入外部初始化好的 *sql.DB（例如 common.InitDB 返回的句柄）
func UseDB(d *sql.DB) {
	if d == nil {
		return
	}
	db = d
}

// UseSlaveDB: 注入只读从库句柄（可选，未注入时读操作走主库）
func UseSlaveDB(d *sql.DB) {
	if d == nil {
		return
	}
	slaveDB = d
}

// 全局 *sql.DB 句柄（由 UseDB 注入）
var db *sql.DB

// 只读从库句柄（由 UseSlaveDB 注入，可为空）
var slaveDB *sql.DB

// DB 返回全局 *sql.DB 句柄
func DB() *sql.DB { return db }

// SlaveDB 返回从库句柄（可能为 nil）
func SlaveDB() *sql.DB { return slaveDB }

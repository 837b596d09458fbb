package gormpersistence

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// isDuplicateEntryError 判断数据库错误是否为唯一约束冲突。
// MySQL 用错误码 1062 精确识别；其他驱动 (如测试用的 SQLite)
// 回退到错误字符串检查 (临时方案)。
func isDuplicateEntryError(err error) bool {
	if err == nil {
		return false
	}
	// --- 健壮的唯一约束检查 (以 MySQL 为例) ---
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	// --- 后备的字符串检查 ---
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed")
}

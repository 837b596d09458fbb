package domain

// Viewer 表示一次请求的查看者身份：要么匿名，要么是已认证的用户。
// 所有查看者可选的操作都接收同一个 Viewer 参数，
// 而不是为"带认证"和"不带认证"各写一个函数变体。
type Viewer struct {
	user *User
}

// Anonymous 返回匿名查看者。
func Anonymous() Viewer {
	return Viewer{}
}

// Identified 返回已认证的查看者。user 为 nil 时等同于匿名。
func Identified(user *User) Viewer {
	return Viewer{user: user}
}

// IsAnonymous 报告查看者是否匿名。
func (v Viewer) IsAnonymous() bool {
	return v.user == nil
}

// Username 返回查看者的用户名；匿名时返回空字符串。
func (v Viewer) Username() string {
	if v.user == nil {
		return ""
	}
	return v.user.Username
}

// User 返回查看者对应的用户对象；匿名时返回 nil。
func (v Viewer) User() *User {
	return v.user
}

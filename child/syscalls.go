package child

import "syscall"

// setUid sets the real, effective and saved user ID.
func setUid(uid int) error {
	return syscall.Setuid(uid)
}

// setGid sets the real, effective and saved group ID.
func setGid(gid int) error {
	return syscall.Setgid(gid)
}

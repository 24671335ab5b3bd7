// Package auth holds the password digest shared by the /md5 route and the
// mtbridged md5 command.
package auth

import (
	"crypto/md5"
	"encoding/hex"
)

// MD5Hex returns the lowercase hex MD5 digest terminals store for passwords.
func MD5Hex(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

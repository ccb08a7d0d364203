// Package common provides common helpers shared by the reader packages.
package common

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Now returns timestamp of the point of calling.
func Now() int64 {
	return time.Now().Unix()
}

// NowMilli returns timestamp in milliseconds of the point of calling.
func NowMilli() int64 {
	return time.Now().UnixNano() / 1e6
}

// GetInt64FromStr parses a decimal or 0x prefixed hex string to int64
func GetInt64FromStr(str string) (int64, error) {
	str = strings.TrimSpace(str)
	var (
		res int64
		err error
	)
	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		res, err = strconv.ParseInt(str[2:], 16, 64)
	} else {
		res, err = strconv.ParseInt(str, 10, 64)
	}
	if err != nil {
		return 0, errors.New("invalid signed 64 bit integer: " + str)
	}
	return res, nil
}

// FileExist returns if a file exists
func FileExist(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

// AbsPath returns the absolute path of 'path' relative to 'baseDir'.
// Empty 'baseDir' means the working directory.
func AbsPath(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	if baseDir == "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return path
		}
		return abs
	}
	return filepath.Join(baseDir, path)
}

package util

import (
	"io"
	"net/http"
	"strconv"
)

// StrSliceToUInt64Slice 批量转换集合成员，脏集合消费用
func StrSliceToUInt64Slice(strs []string) ([]uint64, error) {
	out := make([]uint64, 0, len(strs))
	for _, s := range strs {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// GetSafeContentType 以文件头嗅探真实类型，不信任客户端声明
func GetSafeContentType(reader io.ReadSeeker) (string, error) {
	buf := make([]byte, 512)
	n, err := reader.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err = reader.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

package service

import "errors"

// 领域错误，handler 用 errors.Is 映射到 HTTP 状态码
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrCapacityExceeded    = errors.New("follower capacity exceeded")
	ErrForbidden           = errors.New("forbidden")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

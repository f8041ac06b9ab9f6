package service

import "errors"

// 结算相关业务错误，controller 层据此映射错误码与 HTTP 状态
var (
	ErrBadRequest               = errors.New("bad request")
	ErrRoundNotFound            = errors.New("group round not found")
	ErrNotEligible              = errors.New("round not eligible for draw")
	ErrInsufficientParticipants = errors.New("insufficient eligible participants")
	ErrDrawInProgress           = errors.New("draw already in progress")
	ErrNotYetDrawn              = errors.New("round not yet drawn")
	ErrRoundFailed              = errors.New("round is in failed state")
)

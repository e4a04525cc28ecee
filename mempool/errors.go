package mempool

import "errors"

var (
	errAlreadySeen      = errors.New("mempool: transaction already seen")
	errNonceOutOfWindow = errors.New("mempool: nonce outside acceptance window")
	errReplaceFeeTooLow = errors.New("mempool: replacement fee below 1.10x incumbent")
)

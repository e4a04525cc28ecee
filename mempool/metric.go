package mempool

import "kratos/libs/metric"

// poolSize reports the pool's pending-transaction count after every
// accepted or evicted transaction, the mempool-side counterpart of
// consensus/metric.go, both registered into the shared metric.DefaultSet.
var poolSize = metric.NewSample("mempool.pool_size")

func init() {
	_ = metric.DefaultSet.Register("mempool.pool_size", poolSize)
}

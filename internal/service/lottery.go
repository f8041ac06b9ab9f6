package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// 抽奖模块：种子推导 + 中奖者选取
// 两者都是纯函数：同样的种子与参与者集合必然产出同样的中奖名单，
// 审计方可以凭落库的 seed 逐字节复现开奖过程。

// DeriveSeed 推导本局随机种子（hex 字符串，落库保存）
// 算法：HMAC-SHA256(secret, round_id + "|" + join(sort(order_ids), ","))
// 参与者列表先排序再拼接，调用方传入顺序不影响结果
func DeriveSeed(secret, roundID string, orderIDs []string) string {
	ids := make([]string, len(orderIDs))
	copy(ids, orderIDs)
	sort.Strings(ids)

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(roundID))
	h.Write([]byte("|"))
	h.Write([]byte(strings.Join(ids, ",")))
	return hex.EncodeToString(h.Sum(nil))
}

// SelectWinners 从参与者中无偏选取 k 个中奖者
// 实现：对排序后的 order_id 列表做部分 Fisher-Yates 洗牌，
// 随机数来自以 seed 为密钥的 SHA-256 计数器流，
// 取模偏差用拒绝采样消除（每个大小为 k 的子集等概率）。
// 返回的中奖名单按 order_id 升序。
func SelectWinners(seedHex string, orderIDs []string, k int) ([]string, error) {
	if k < 0 || k > len(orderIDs) {
		return nil, fmt.Errorf("winner count %d out of range [0, %d]", k, len(orderIDs))
	}

	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("invalid seed hex: %w", err)
	}

	ids := make([]string, len(orderIDs))
	copy(ids, orderIDs)
	sort.Strings(ids)

	st := newSeedStream(seed)
	// 部分洗牌：前 k 个位置即中奖者
	for i := 0; i < k; i++ {
		j := i + st.intn(len(ids)-i)
		ids[i], ids[j] = ids[j], ids[i]
	}

	winners := ids[:k:k]
	sort.Strings(winners)
	return winners, nil
}

// seedStream 是 SHA-256 计数器模式的确定性随机流
type seedStream struct {
	seed    []byte
	counter uint64
	buf     [sha256.Size]byte
	off     int
}

func newSeedStream(seed []byte) *seedStream {
	s := &seedStream{seed: seed}
	s.refill()
	return s
}

func (s *seedStream) refill() {
	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], s.counter)
	s.counter++

	h := sha256.New()
	h.Write(s.seed)
	h.Write(ctr[:])
	h.Sum(s.buf[:0])
	s.off = 0
}

// next64 取流中的下一个 uint64
func (s *seedStream) next64() uint64 {
	if s.off+8 > len(s.buf) {
		s.refill()
	}
	v := binary.BigEndian.Uint64(s.buf[s.off : s.off+8])
	s.off += 8
	return v
}

// intn 返回 [0, n) 上的均匀随机数
// 拒绝采样：丢弃落在 2^64 - (2^64 mod n) 之上的样本，消除取模偏差
func (s *seedStream) intn(n int) int {
	if n <= 0 {
		return 0
	}
	un := uint64(n)
	limit := ^uint64(0) - (^uint64(0) % un)
	for {
		v := s.next64()
		if v < limit {
			return int(v % un)
		}
	}
}

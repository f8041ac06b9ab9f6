package helper

import (
	"time"

	"golang.org/x/exp/rand"
)

// GenerateRandNum 返回 [min, max) 区间随机数，用于 worker 轮询抖动
func GenerateRandNum(min, max int) int {
	rand.Seed(uint64(time.Now().UnixNano()))

	return min + rand.Intn(max-min)
}

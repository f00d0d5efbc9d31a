package service

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"sort"
	"strconv"
	"vct-survivor/internal/domain"
)

// SelectMatch deterministically picks one match id from pool for
// (user, stageID, salt).
//
// The seed is SHA-256 over "user|stageID|salt"; the first two big-endian
// 64-bit words of the digest seed a PCG-DXSM generator and its first Uint64,
// reduced modulo the pool size, indexes the pool sorted by match id. Every
// step is a fixed algorithm, so the result is reproducible across restarts
// and can be recomputed from (user, stage) alone.
func SelectMatch(pool []domain.Match, user string, stageID int, salt string) (string, bool) {
	if len(pool) == 0 {
		return "", false
	}

	ids := make([]string, len(pool))
	for i, m := range pool {
		ids[i] = m.ID
	}
	sort.Strings(ids)

	rng := rand.NewPCG(selectionSeed(user, stageID, salt))
	return ids[rng.Uint64()%uint64(len(ids))], true
}

func selectionSeed(user string, stageID int, salt string) (uint64, uint64) {
	sum := sha256.Sum256([]byte(user + "|" + strconv.Itoa(stageID) + "|" + salt))
	return binary.BigEndian.Uint64(sum[0:8]), binary.BigEndian.Uint64(sum[8:16])
}

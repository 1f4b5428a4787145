package admission

import (
	"crypto/rand"
	"encoding/binary"
	"sync/atomic"
	"time"
)

const (
	nodeBits     = 10
	sequenceBits = 12
	nodeMask     = 1<<nodeBits - 1
)

// idEpoch — точка отсчёта миллисекунд; 41 бит хватает примерно на 69 лет.
var idEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// SequenceGenerator выдаёт строго возрастающие в пределах процесса int64 идентификаторы.
//
// Раскладка: [ миллисекунды от idEpoch : 41 | счётчик в миллисекунде : 12 | узел : 10 ].
// Счётчик продвигается через CAS, поэтому при всплеске больше 4096 заказов в миллисекунду
// значения просто «занимают» будущие миллисекунды, но не повторяются. Узел выбирается
// случайно при старте и разводит несколько процессов над общим хранилищем; совпадение
// узлов возможно, его ловит хранилище через ErrDuplicateOrderID.
type SequenceGenerator struct {
	last  atomic.Int64
	node  int64
	nowFn func() time.Time
}

// NewSequenceGenerator создаёт генератор со случайным номером узла.
func NewSequenceGenerator() *SequenceGenerator {
	return newSequenceGenerator(randomNode(), time.Now)
}

// NewSequenceGeneratorForNode создаёт генератор с явно заданным номером узла (0..1023).
func NewSequenceGeneratorForNode(node int64) *SequenceGenerator {
	return newSequenceGenerator(node, time.Now)
}

func newSequenceGenerator(node int64, nowFn func() time.Time) *SequenceGenerator {
	return &SequenceGenerator{node: node & nodeMask, nowFn: nowFn}
}

// NextID возвращает следующий идентификатор. Безопасен для конкурентного вызова.
func (g *SequenceGenerator) NextID() int64 {
	base := g.nowFn().Sub(idEpoch).Milliseconds()
	if base < 0 {
		base = 0
	}
	base <<= sequenceBits

	for {
		last := g.last.Load()
		next := base
		if next <= last {
			next = last + 1
		}
		if g.last.CompareAndSwap(last, next) {
			return next<<nodeBits | g.node
		}
	}
}

// Node возвращает номер узла генератора.
func (g *SequenceGenerator) Node() int64 {
	return g.node
}

func randomNode() int64 {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return time.Now().UnixNano() & nodeMask
	}
	return int64(binary.BigEndian.Uint16(buf[:])) & nodeMask
}

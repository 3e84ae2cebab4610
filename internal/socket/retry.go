package socket

import "fmt"

// FailState — какое действие повторить по таймеру.
type FailState int

const (
	// FailLogin — авторизация не удалась (не было токена или сервер отказал).
	FailLogin FailState = iota
)

func (s FailState) String() string {
	switch s {
	case FailLogin:
		return "login"
	}
	return fmt.Sprintf("failstate(%d)", int(s))
}

// retryTable — таблица ожидающих повторов: handle -> FailState.
// Handle живёт от reserve до release; после release число можно выдать снова.
// Живёт только в горутине событий транспорта, без блокировок.
type retryTable struct {
	slots map[int]FailState
}

func newRetryTable() *retryTable {
	return &retryTable{slots: make(map[int]FailState)}
}

// reserve выдаёт наименьший свободный неотрицательный handle.
func (r *retryTable) reserve(state FailState) int {
	n := 0
	for {
		if _, busy := r.slots[n]; !busy {
			break
		}
		n++
	}
	r.slots[n] = state
	return n
}

// release убирает handle; false — такого нет (устаревший или повторный таймер).
func (r *retryTable) release(handle int) (FailState, bool) {
	state, ok := r.slots[handle]
	if ok {
		delete(r.slots, handle)
	}
	return state, ok
}

func (r *retryTable) pending() int { return len(r.slots) }

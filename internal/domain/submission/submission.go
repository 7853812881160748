// Пакет submission — конечный автомат отправки формы создания пользователя.
//
// Жизненный цикл одной отправки:
//
//	idle → submitting → success | failed → idle
//
// Registry держит автомат на каждую вкладку и не допускает второй
// отправки, пока первая не завершилась.
package submission

import (
	"fmt"
	"sync"
	"time"
)

// State — состояние отправки.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// Коды ошибок переходов.
const (
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeInFlight          = "SUBMISSION_IN_FLIGHT"
)

// validTransitions — матрица допустимых переходов.
var validTransitions = map[State]map[State]bool{
	StateIdle:       {StateSubmitting: true},
	StateSubmitting: {StateSuccess: true, StateFailed: true},
	StateSuccess:    {StateIdle: true},
	StateFailed:     {StateIdle: true},
}

// TransitionRecord — запись о переходе.
type TransitionRecord struct {
	From      State     `json:"from"`
	To        State     `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// TransitionError — ошибка недопустимого перехода.
type TransitionError struct {
	Code    string
	Message string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// StateMachine — автомат одной вкладки. Потокобезопасен.
type StateMachine struct {
	mu      sync.RWMutex
	current State
	history []TransitionRecord
}

// NewStateMachine создаёт автомат в состоянии idle.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		history: make([]TransitionRecord, 0, 4),
	}
}

// Current возвращает текущее состояние.
func (sm *StateMachine) Current() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

// CanTransitionTo проверяет, допустим ли переход.
func (sm *StateMachine) CanTransitionTo(target State) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return validTransitions[sm.current][target]
}

// TransitionTo выполняет переход или возвращает *TransitionError.
func (sm *StateMachine) TransitionTo(target State) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !validTransitions[sm.current][target] {
		code := CodeInvalidTransition
		if sm.current == StateSubmitting && target == StateSubmitting {
			code = CodeInFlight
		}
		return &TransitionError{
			Code:    code,
			Message: fmt.Sprintf("переход %s → %s недопустим", sm.current, target),
		}
	}

	sm.history = append(sm.history, TransitionRecord{
		From:      sm.current,
		To:        target,
		Timestamp: time.Now().UTC(),
	})
	sm.current = target
	return nil
}

// History возвращает копию истории переходов.
func (sm *StateMachine) History() []TransitionRecord {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	result := make([]TransitionRecord, len(sm.history))
	copy(result, sm.history)
	return result
}

// Registry — автоматы отправки по ключу вкладки.
type Registry struct {
	mu       sync.Mutex
	machines map[string]*StateMachine
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{machines: make(map[string]*StateMachine)}
}

// Begin переводит автомат вкладки idle → submitting.
// Если для вкладки уже идёт отправка — *TransitionError с кодом SUBMISSION_IN_FLIGHT.
func (r *Registry) Begin(key string) (*StateMachine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sm, ok := r.machines[key]
	if !ok {
		sm = NewStateMachine()
		r.machines[key] = sm
	}
	if err := sm.TransitionTo(StateSubmitting); err != nil {
		return nil, err
	}
	return sm, nil
}

// Finish фиксирует итог (success или failed), возвращает автомат в idle
// и освобождает вкладку.
func (r *Registry) Finish(key string, sm *StateMachine, outcome State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	if sm.Current() == StateSubmitting {
		firstErr = sm.TransitionTo(outcome)
	}
	if sm.Current() != StateIdle {
		if err := sm.TransitionTo(StateIdle); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if r.machines[key] == sm {
		delete(r.machines, key)
	}
	return firstErr
}

// InFlight возвращает количество вкладок с незавершённой отправкой.
func (r *Registry) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, sm := range r.machines {
		if sm.Current() == StateSubmitting {
			n++
		}
	}
	return n
}

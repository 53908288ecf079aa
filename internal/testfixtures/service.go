package testfixtures

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// TestService is the native interface bound to TestInterface.
type TestService interface {
	TestIndex(ctx context.Context, arg0, arg1 int32) (int32, error)
	TestRemote(ctx context.Context) (string, error)
	TestPost(ctx context.Context, arg0, arg1 int32) (int32, error)
	TestString(ctx context.Context, text string) (string, error)
	TestDatetime(ctx context.Context, datetime0 time.Time) (time.Time, error)
	TestEnum(ctx context.Context, enum0 TestEnum) (TestEnum, error)
	TestMessage(ctx context.Context, msg *TestMessage) (*TestMessage, error)
	TestForm(ctx context.Context, form *TestForm) (*TestForm, error)
	TestPolymorphic(ctx context.Context, msg BaseMessage) (BaseMessage, error)
	TestCollections(ctx context.Context, list0 []int32, set0 map[int32]struct{}, map0 map[int32]string) (*TestMessage, error)
	TestVoid(ctx context.Context) error
	TestExc(ctx context.Context, text string) (string, error)
	TestError(ctx context.Context) error
	TestInterface(ctx context.Context, a, b int32) (TestService, error)
}

// RootService is the native interface bound to RootInterface.
type RootService interface {
	Interface0(ctx context.Context, bool0 bool, int0 int32, string0 string) (SubService, error)
}

// SubService is the native interface bound to SubInterface.
type SubService interface {
	Get(ctx context.Context, int0 int32, string0 string) (string, error)
}

// ErrUnexpected is returned by TestError.
var ErrUnexpected = errors.New("testfixtures: unexpected failure with internal detail")

// Service echoes its arguments and records every call.
type Service struct {
	mu    sync.Mutex
	calls []string
}

var _ TestService = (*Service)(nil)

// Calls returns the recorded calls in order.
func (s *Service) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *Service) record(format string, args ...any) {
	s.mu.Lock()
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
	s.mu.Unlock()
}

func (s *Service) TestIndex(ctx context.Context, arg0, arg1 int32) (int32, error) {
	s.record("testIndex(%d, %d)", arg0, arg1)
	return arg0 + arg1, nil
}

func (s *Service) TestRemote(ctx context.Context) (string, error) {
	s.record("testRemote()")
	return "remote", nil
}

func (s *Service) TestPost(ctx context.Context, arg0, arg1 int32) (int32, error) {
	s.record("testPost(%d, %d)", arg0, arg1)
	return arg0 * arg1, nil
}

func (s *Service) TestString(ctx context.Context, text string) (string, error) {
	s.record("testString(%q)", text)
	return text, nil
}

func (s *Service) TestDatetime(ctx context.Context, datetime0 time.Time) (time.Time, error) {
	s.record("testDatetime(%s)", datetime0.Format(time.RFC3339))
	return datetime0, nil
}

func (s *Service) TestEnum(ctx context.Context, enum0 TestEnum) (TestEnum, error) {
	s.record("testEnum(%d)", enum0)
	return enum0, nil
}

func (s *Service) TestMessage(ctx context.Context, msg *TestMessage) (*TestMessage, error) {
	s.record("testMessage()")
	return msg, nil
}

func (s *Service) TestForm(ctx context.Context, form *TestForm) (*TestForm, error) {
	s.record("testForm()")
	return form, nil
}

func (s *Service) TestPolymorphic(ctx context.Context, msg BaseMessage) (BaseMessage, error) {
	s.record("testPolymorphic(%T)", msg)
	return msg, nil
}

func (s *Service) TestCollections(ctx context.Context, list0 []int32, set0 map[int32]struct{}, map0 map[int32]string) (*TestMessage, error) {
	s.record("testCollections(%d, %d, %d)", len(list0), len(set0), len(map0))
	return &TestMessage{List0: list0, Set0: set0, Map0: map0}, nil
}

func (s *Service) TestVoid(ctx context.Context) error {
	s.record("testVoid()")
	return nil
}

func (s *Service) TestExc(ctx context.Context, text string) (string, error) {
	s.record("testExc(%q)", text)
	return "", &TestException{Text: text}
}

func (s *Service) TestError(ctx context.Context) error {
	s.record("testError()")
	return ErrUnexpected
}

func (s *Service) TestInterface(ctx context.Context, a, b int32) (TestService, error) {
	s.record("testInterface(%d, %d)", a, b)
	return s, nil
}

// Root implements RootService.
type Root struct{}

func (Root) Interface0(ctx context.Context, bool0 bool, int0 int32, string0 string) (SubService, error) {
	return sub{bool0: bool0, int0: int0, string0: string0}, nil
}

type sub struct {
	bool0   bool
	int0    int32
	string0 string
}

func (s sub) Get(ctx context.Context, int0 int32, string0 string) (string, error) {
	return fmt.Sprintf("%t %d %s %d %s", s.bool0, s.int0, s.string0, int0, string0), nil
}

package tray

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yllada/leaf-vpn/common"
	"github.com/yllada/leaf-vpn/status"
)

type recordingSetter struct {
	mu     sync.Mutex
	colors []Color
	fail   error
}

func (s *recordingSetter) SetIcon(icon Icon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.colors = append(s.colors, icon.Color)
	return nil
}

func (s *recordingSetter) setFail(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

func (s *recordingSetter) applied() []Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Color(nil), s.colors...)
}

func TestLoadIcon(t *testing.T) {
	for _, c := range []Color{Grey, Green, Red, Yellow} {
		t.Run(c.String(), func(t *testing.T) {
			icon, err := LoadIcon(c)
			require.NoError(t, err)
			assert.Equal(t, c, icon.Color)
			assert.NotEmpty(t, icon.PNG)
			require.NotNil(t, icon.Bitmap)
			assert.Equal(t, common.TrayIconSize, icon.Bitmap.Bounds().Dx())
		})
	}

	_, err := LoadIcon(Color(42))
	assert.True(t, errors.Is(err, common.ErrIconDecode))
}

func TestAssetsDiffer(t *testing.T) {
	grey, err := Asset(Grey)
	require.NoError(t, err)
	green, err := Asset(Green)
	require.NoError(t, err)
	assert.NotEqual(t, grey, green)
}

func TestReducer_ApplyIsIdempotent(t *testing.T) {
	setter := &recordingSetter{}
	r := NewReducer(status.NewCache(), setter)

	swapped, err := r.Apply(Green)
	require.NoError(t, err)
	assert.True(t, swapped)

	swapped, err = r.Apply(Green)
	require.NoError(t, err)
	assert.False(t, swapped)

	assert.Equal(t, []Color{Green}, setter.applied())
	assert.Equal(t, Green, r.Current())
}

func TestReducer_FailedSetKeepsCurrent(t *testing.T) {
	setter := &recordingSetter{}
	r := NewReducer(status.NewCache(), setter)

	_, err := r.Apply(Green)
	require.NoError(t, err)

	setter.setFail(common.ErrTrayNotReady)
	_, err = r.Apply(Red)
	require.ErrorIs(t, err, common.ErrTrayNotReady)
	assert.Equal(t, Green, r.Current(), "current color must not change on failure")

	setter.setFail(nil)
	swapped, err := r.Apply(Red)
	require.NoError(t, err)
	assert.True(t, swapped, "the failed color is retried")
	assert.Equal(t, []Color{Green, Red}, setter.applied())
}

func TestReducer_FailedDecodeKeepsCurrent(t *testing.T) {
	setter := &recordingSetter{}
	r := NewReducer(status.NewCache(), setter)
	r.load = func(Color) (Icon, error) { return Icon{}, common.ErrIconDecode }

	_, err := r.Apply(Yellow)
	require.ErrorIs(t, err, common.ErrIconDecode)
	assert.Equal(t, Grey, r.Current())
	assert.Empty(t, setter.applied())
}

func TestReducer_InitForcesApply(t *testing.T) {
	setter := &recordingSetter{}
	cache := status.NewCache()
	r := NewReducer(cache, setter)

	c, err := r.Init()
	require.NoError(t, err)
	assert.Equal(t, Grey, c)

	c, err = r.Init()
	require.NoError(t, err)
	assert.Equal(t, Grey, c)

	assert.Equal(t, []Color{Grey, Grey}, setter.applied(), "Init bypasses the unchanged check")
}

func TestReducer_InitFailureIsRetriedByRefresh(t *testing.T) {
	setter := &recordingSetter{fail: common.ErrTrayNotReady}
	r := NewReducer(status.NewCache(), setter)

	_, err := r.Init()
	require.Error(t, err)

	setter.setFail(nil)
	_, err = r.Refresh()
	require.NoError(t, err)
	assert.Equal(t, []Color{Grey}, setter.applied())
}

func TestReducer_RefreshFollowsCache(t *testing.T) {
	setter := &recordingSetter{}
	cache := status.NewCache()
	r := NewReducer(cache, setter)
	_, err := r.Init()
	require.NoError(t, err)

	cache.Update(status.ProxyStatus{State: status.ProxyStarted})
	c, err := r.Refresh()
	require.NoError(t, err)
	assert.Equal(t, Green, c)

	cache.Update(status.ConnectivityLost)
	c, _ = r.Refresh()
	assert.Equal(t, Yellow, c)

	cache.Update(status.EngineStatus{State: status.EngineError, Message: "crash"})
	c, _ = r.Refresh()
	assert.Equal(t, Red, c)

	c, _ = r.Refresh()
	assert.Equal(t, Red, c)

	assert.Equal(t, []Color{Grey, Green, Yellow, Red}, setter.applied())
}

func TestReducer_ConcurrentRefreshSwapsOnce(t *testing.T) {
	setter := &recordingSetter{}
	cache := status.NewCache()
	r := NewReducer(cache, setter)
	_, err := r.Init()
	require.NoError(t, err)

	cache.Update(status.ProxyStatus{State: status.ProxyStarted})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Refresh()
		}()
	}
	wg.Wait()

	assert.Equal(t, []Color{Grey, Green}, setter.applied())
}

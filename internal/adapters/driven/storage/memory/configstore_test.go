package memory

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("search.url", "http://localhost:7700"))

	val, ok := store.Get("search.url")
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:7700", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("str", "value")
	_ = store.Set("int", 42)
	_ = store.Set("int64", int64(7))
	_ = store.Set("float", 3.9)
	_ = store.Set("bool", true)
	_ = store.Set("dur_string", "30m")
	_ = store.Set("dur_value", 5*time.Second)
	_ = store.Set("dur_bad", "soon")

	assert.Equal(t, "value", store.GetString("str"))
	assert.Equal(t, "", store.GetString("int"))

	assert.Equal(t, 42, store.GetInt("int"))
	assert.Equal(t, 7, store.GetInt("int64"))
	assert.Equal(t, 3, store.GetInt("float"))
	assert.Equal(t, 0, store.GetInt("str"))

	assert.True(t, store.GetBool("bool"))
	assert.False(t, store.GetBool("str"))
	assert.False(t, store.GetBool("missing"))

	assert.Equal(t, 30*time.Minute, store.GetDuration("dur_string"))
	assert.Equal(t, 5*time.Second, store.GetDuration("dur_value"))
	assert.Equal(t, time.Duration(0), store.GetDuration("dur_bad"))
	assert.Equal(t, time.Duration(0), store.GetDuration("missing"))
}

func TestConfigStore_Path(t *testing.T) {
	store := NewConfigStore()

	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "key-" + strconv.Itoa(id)
			_ = store.Set(key, id)
			_ = store.GetInt(key)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		assert.Equal(t, i, store.GetInt("key-"+strconv.Itoa(i)))
	}
}

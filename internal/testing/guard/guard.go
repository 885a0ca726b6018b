package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("TASKHIVE_TEST_MODE") == "" {
			_ = os.Setenv("TASKHIVE_TEST_MODE", "1")
		}
	})
}

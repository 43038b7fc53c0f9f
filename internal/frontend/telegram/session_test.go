package telegram

import (
	"context"
	"sync"
	"testing"

	"github.com/vadimtrunov/moviescout/internal/search"
)

// loadedController returns a controller holding the first page of "bat".
func loadedController(t *testing.T, svc *fakeService) *search.Controller {
	t.Helper()
	c := search.NewController()
	req, ok := c.SetQuery("bat")
	if !ok {
		t.Fatal("expected a page request")
	}
	if !c.Apply(req.Run(context.Background(), svc)) {
		t.Fatal("expected the page to be applied")
	}
	return c
}

func TestSessionManager_IsAllowed(t *testing.T) {
	t.Run("empty whitelist allows all", func(t *testing.T) {
		sm := newSessionManager(nil)
		if !sm.isAllowed(123) {
			t.Error("expected all users allowed with nil whitelist")
		}
		if !sm.isAllowed(456) {
			t.Error("expected all users allowed with nil whitelist")
		}
	})

	t.Run("empty slice allows all", func(t *testing.T) {
		sm := newSessionManager([]int64{})
		if !sm.isAllowed(123) {
			t.Error("expected all users allowed with empty whitelist")
		}
	})

	t.Run("whitelist restricts", func(t *testing.T) {
		sm := newSessionManager([]int64{100, 200})
		if !sm.isAllowed(100) {
			t.Error("expected user 100 allowed")
		}
		if !sm.isAllowed(200) {
			t.Error("expected user 200 allowed")
		}
		if sm.isAllowed(300) {
			t.Error("expected user 300 denied")
		}
	})
}

func TestSessionManager_Get(t *testing.T) {
	sm := newSessionManager(nil)

	s1 := sm.get(1)
	s2 := sm.get(1)
	if s1 != s2 {
		t.Error("expected same session for same chat")
	}

	s3 := sm.get(2)
	if s1 == s3 {
		t.Error("expected different sessions for different chats")
	}
	if sm.len() != 2 {
		t.Errorf("len() = %d, want 2", sm.len())
	}
}

func TestSessionManager_Reset(t *testing.T) {
	sm := newSessionManager(nil)
	svc := newFakeService()

	s := sm.get(1)
	req, ok := s.ctrl.SetQuery("bat")
	if !ok {
		t.Fatal("expected a page request")
	}

	sm.reset(1)
	if s.ctrl.Apply(req.Run(context.Background(), svc)) {
		t.Error("a fetch issued before reset must be discarded")
	}
	if sm.get(1) == s {
		t.Error("expected a fresh session after reset")
	}
}

func TestSessionManager_NextSerialSurvivesReset(t *testing.T) {
	sm := newSessionManager(nil)

	if got := sm.nextSerial(1); got != 1 {
		t.Errorf("first serial = %d, want 1", got)
	}
	sm.reset(1)
	if got := sm.nextSerial(1); got != 2 {
		t.Errorf("serial after reset = %d, want 2", got)
	}
	if got := sm.nextSerial(2); got != 1 {
		t.Errorf("other chat serial = %d, want 1", got)
	}
}

func TestSessionManager_CloseAll(t *testing.T) {
	sm := newSessionManager(nil)
	sm.get(1)
	sm.get(2)

	sm.closeAll()
	if sm.len() != 0 {
		t.Errorf("len() = %d after closeAll, want 0", sm.len())
	}
}

func TestSessionManager_ConcurrentAccess(t *testing.T) {
	sm := newSessionManager(nil)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			sm.get(id % 5)
			if id%7 == 0 {
				sm.reset(id % 5)
			}
		}(int64(i))
	}
	wg.Wait()
}

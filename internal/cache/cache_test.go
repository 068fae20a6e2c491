package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New()
	key := Key("user_stats", "u1")

	if _, ok := c.Get(key); ok {
		t.Fatal("empty cache reported a hit")
	}

	c.Set(key, 42, time.Minute, UserTag("u1"))
	v, ok := c.Get(key)
	if !ok {
		t.Fatal("set entry missing")
	}
	if v.(int) != 42 {
		t.Errorf("value = %v, want 42", v)
	}
}

func TestExpiry(t *testing.T) {
	c := New()
	key := Key("recent_activities", "u1", "5")

	c.Set(key, "stale", -time.Second, ActivityTag("u1"))
	if _, ok := c.Get(key); ok {
		t.Error("expired entry served")
	}
	if s := c.Stats(); s.Size != 0 {
		t.Errorf("size = %d after expiry, want 0", s.Size)
	}
}

func TestInvalidateUser_DropsBothScopes(t *testing.T) {
	c := New()
	c.Set(Key("user_stats", "u1"), 1, time.Minute, UserTag("u1"))
	c.Set(Key("activities", "u1", "1", "10"), 2, time.Minute, ActivityTag("u1"))
	c.Set(Key("user_stats", "u2"), 3, time.Minute, UserTag("u2"))

	removed := c.InvalidateUser("u1")
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	if _, ok := c.Get(Key("user_stats", "u1")); ok {
		t.Error("u1 stats survived invalidation")
	}
	if _, ok := c.Get(Key("activities", "u1", "1", "10")); ok {
		t.Error("u1 activities survived invalidation")
	}
	if _, ok := c.Get(Key("user_stats", "u2")); !ok {
		t.Error("u2 stats wrongly invalidated")
	}
}

func TestInvalidateActivities_LeavesUserScope(t *testing.T) {
	c := New()
	c.Set(Key("user_stats", "u1"), 1, time.Minute, UserTag("u1"))
	c.Set(Key("activity_stats", "u1"), 2, time.Minute, ActivityTag("u1"))

	c.InvalidateActivities("u1")

	if _, ok := c.Get(Key("user_stats", "u1")); !ok {
		t.Error("user-scoped entry dropped by activity invalidation")
	}
	if _, ok := c.Get(Key("activity_stats", "u1")); ok {
		t.Error("activity-scoped entry survived")
	}
}

func TestSetOverwriteRetags(t *testing.T) {
	c := New()
	key := Key("activities", "u1", "1", "10")

	c.Set(key, "old", time.Minute, ActivityTag("u1"))
	c.Set(key, "new", time.Minute, ActivityTag("u1"))

	if removed := c.InvalidateActivities("u1"); removed != 1 {
		t.Errorf("removed = %d, want 1 (no duplicate index entries)", removed)
	}
}

func TestClearAndStats(t *testing.T) {
	c := New()
	c.Set(Key("a"), 1, time.Minute, UserTag("u1"))
	c.Set(Key("b"), 2, time.Minute, UserTag("u2"))
	c.StartQuery("getUserStats")

	s := c.Stats()
	if s.Size != 2 {
		t.Errorf("size = %d, want 2", s.Size)
	}
	if s.ActiveQueries != 1 {
		t.Errorf("activeQueries = %d, want 1", s.ActiveQueries)
	}

	if n := c.Clear(); n != 2 {
		t.Errorf("cleared = %d, want 2", n)
	}
	if s := c.Stats(); s.Size != 0 {
		t.Errorf("size after clear = %d, want 0", s.Size)
	}

	c.EndQuery("getUserStats")
	if s := c.Stats(); s.ActiveQueries != 0 {
		t.Errorf("activeQueries after end = %d, want 0", s.ActiveQueries)
	}
}

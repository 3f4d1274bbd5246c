package services

import (
	"playto/internal/db"
	"playto/internal/models"
	"reflect"
	"testing"
	"time"
)

func addKarma(t *testing.T, userID uint, delta int, at time.Time) {
	t.Helper()
	entry := models.KarmaEntry{UserID: userID, Delta: delta, TargetKind: models.TargetPost, CreatedAt: at}
	if err := db.DB.Create(&entry).Error; err != nil {
		t.Fatalf("failed to append karma entry: %v", err)
	}
}

func TestTopAuthors(t *testing.T) {
	setupTestDB(t)
	alice := createUser(t, "alice")
	bob := createUser(t, "bob")
	carol := createUser(t, "carol")
	dave := createUser(t, "dave")

	now := time.Now()
	since := now.Add(-24 * time.Hour)

	// alice 和 bob 窗口内都是 10 分，bob 的首条流水更早，排前面
	addKarma(t, alice.ID, 5, now.Add(-2*time.Hour))
	addKarma(t, alice.ID, 5, now.Add(-1*time.Hour))
	addKarma(t, bob.ID, 5, now.Add(-6*time.Hour))
	addKarma(t, bob.ID, 5, now.Add(-30*time.Minute))

	// carol 窗口内净 karma 为 0，不上榜
	addKarma(t, carol.ID, 5, now.Add(-3*time.Hour))
	addKarma(t, carol.ID, -5, now.Add(-2*time.Hour))

	// dave 的流水在窗口外
	addKarma(t, dave.ID, 5, now.Add(-48*time.Hour))

	rows := TopAuthors(since, 5)
	want := []LeaderboardRow{
		{Username: "bob", Karma: 10},
		{Username: "alice", Karma: 10},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("leaderboard mismatch: got %v, want %v", rows, want)
	}

	// 同一份流水快照反复查询，结果完全一致
	for i := 0; i < 3; i++ {
		if again := TopAuthors(since, 5); !reflect.DeepEqual(again, rows) {
			t.Fatalf("repeat query %d diverged: got %v, want %v", i, again, rows)
		}
	}

	// limit 截断
	if top1 := TopAuthors(since, 1); len(top1) != 1 || top1[0].Username != "bob" {
		t.Errorf("limit=1: got %v, want just bob", top1)
	}
}

func TestTopAuthorsEmptyWindow(t *testing.T) {
	setupTestDB(t)
	alice := createUser(t, "alice")
	addKarma(t, alice.ID, 5, time.Now().Add(-48*time.Hour))

	rows := TopAuthors(time.Now().Add(-24*time.Hour), 5)
	if len(rows) != 0 {
		t.Errorf("expected empty leaderboard, got %v", rows)
	}
}

// 窗口推到流水之前，KarmaSince 等价于全量汇总
func TestKarmaSinceWindow(t *testing.T) {
	setupTestDB(t)
	alice := createUser(t, "alice")

	now := time.Now()
	addKarma(t, alice.ID, 5, now.Add(-30*time.Hour))
	addKarma(t, alice.ID, 1, now.Add(-2*time.Hour))
	addKarma(t, alice.ID, -1, now.Add(-1*time.Hour))

	if got := KarmaSince(alice.ID, time.Time{}); got != 5 {
		t.Errorf("all-time karma: got %d, want 5", got)
	}
	if got := KarmaSince(alice.ID, now.Add(-24*time.Hour)); got != 0 {
		t.Errorf("24h karma: got %d, want 0", got)
	}
}

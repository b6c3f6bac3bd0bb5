package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sanitation-feedback-server/models"
	"sanitation-feedback-server/testutil"
	"sanitation-feedback-server/types"
)

type recordingNotifier struct {
	mu   sync.Mutex
	seen []models.Feedback
}

func (n *recordingNotifier) FeedbackSubmitted(f models.Feedback) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen = append(n.seen, f)
}

func strPtr(s string) *string { return &s }

func TestAuthService_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	admin := testutil.CreateAdmin(t, db, "Admin", "admin@example.com", "adminpw")
	staff := testutil.CreateStaff(t, db, "Staff", "staff@example.com", "staffpw")

	tokens := newTestTokenService()
	svc := NewAuthService(db, tokens, zap.NewNop())
	ctx := context.Background()

	token, err := svc.Login(ctx, types.RoleAdmin, "admin@example.com", "adminpw")
	require.NoError(t, err)
	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, claims.Role)
	id, _ := claims.SubjectID()
	assert.Equal(t, admin.ID, id)

	token, err = svc.Login(ctx, types.RoleStaff, " staff@example.com ", "staffpw")
	require.NoError(t, err)
	claims, err = tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, types.RoleStaff, claims.Role)
	id, _ = claims.SubjectID()
	assert.Equal(t, staff.ID, id)

	_, err = svc.Login(ctx, types.RoleAdmin, "admin@example.com", "wrong")
	requireKind(t, err, ErrorUnauthenticated)

	// Staff credentials do not open the admin table.
	_, err = svc.Login(ctx, types.RoleAdmin, "staff@example.com", "staffpw")
	requireKind(t, err, ErrorUnauthenticated)

	_, err = svc.Login(ctx, types.RoleStaff, "nobody@example.com", "x")
	requireKind(t, err, ErrorUnauthenticated)

	_, err = svc.Login(ctx, types.RoleStaff, "", "x")
	requireKind(t, err, ErrorInvalidInput)
	_, err = svc.Login(ctx, types.RoleStaff, "staff@example.com", "")
	requireKind(t, err, ErrorInvalidInput)
}

func TestFeedbackService_Submit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	loc := testutil.CreateLocation(t, db, "L1")
	notifier := &recordingNotifier{}
	svc := NewFeedbackService(db, notifier)
	ctx := context.Background()

	first, err := svc.Submit(ctx, FeedbackInput{LocationID: loc.ID, Cleanliness: 5, WaterSoap: 4, Hygiene: 3, Odor: 2, Comment: strPtr("ok")})
	require.NoError(t, err)
	second, err := svc.Submit(ctx, FeedbackInput{LocationID: loc.ID, Cleanliness: 1, WaterSoap: 2, Hygiene: 3, Odor: 4})
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	var stored models.Feedback
	require.NoError(t, db.First(&stored, first.ID).Error)
	assert.Equal(t, loc.ID, stored.LocationID)
	assert.Equal(t, 5, stored.Cleanliness)
	assert.Equal(t, 4, stored.WaterSoap)
	assert.Equal(t, 3, stored.Hygiene)
	assert.Equal(t, 2, stored.Odor)
	require.NotNil(t, stored.Comment)
	assert.Equal(t, "ok", *stored.Comment)

	assert.Len(t, notifier.seen, 2)
	assert.Equal(t, first.ID, notifier.seen[0].ID)
}

func TestFeedbackService_RejectsFalsyValues(t *testing.T) {
	db := testutil.SetupTestDB(t)
	loc := testutil.CreateLocation(t, db, "L1")
	notifier := &recordingNotifier{}
	svc := NewFeedbackService(db, notifier)

	valid := FeedbackInput{LocationID: loc.ID, Cleanliness: 3, WaterSoap: 3, Hygiene: 3, Odor: 3}
	testCases := []struct {
		name   string
		mutate func(in *FeedbackInput)
	}{
		{"no location", func(in *FeedbackInput) { in.LocationID = 0 }},
		{"zero cleanliness", func(in *FeedbackInput) { in.Cleanliness = 0 }},
		{"zero water soap", func(in *FeedbackInput) { in.WaterSoap = 0 }},
		{"zero hygiene", func(in *FeedbackInput) { in.Hygiene = 0 }},
		{"zero odor", func(in *FeedbackInput) { in.Odor = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := svc.Submit(context.Background(), in)
			requireKind(t, err, ErrorInvalidInput)
		})
	}

	var count int64
	db.Model(&models.Feedback{}).Count(&count)
	assert.Zero(t, count)
	assert.Empty(t, notifier.seen)
}

func TestFeedbackService_UnknownLocationIsStorageFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewFeedbackService(db, nil)

	_, err := svc.Submit(context.Background(), FeedbackInput{LocationID: 77, Cleanliness: 1, WaterSoap: 1, Hygiene: 1, Odor: 1})
	requireKind(t, err, ErrorStorageFailure)
	assert.Contains(t, err.Error(), "FOREIGN KEY")
}

func TestFeedbackService_BlankCommentStoredAsNull(t *testing.T) {
	db := testutil.SetupTestDB(t)
	loc := testutil.CreateLocation(t, db, "L1")
	svc := NewFeedbackService(db, nil)

	f, err := svc.Submit(context.Background(), FeedbackInput{LocationID: loc.ID, Cleanliness: 1, WaterSoap: 1, Hygiene: 1, Odor: 1, Comment: strPtr("  ")})
	require.NoError(t, err)
	assert.Nil(t, f.Comment)
}

func TestFeedbackService_ListLocations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewFeedbackService(db, nil)

	locations, err := svc.ListLocations(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, locations)
	assert.Empty(t, locations)

	testutil.CreateLocation(t, db, "L1")
	testutil.CreateLocation(t, db, "L2")
	locations, err = svc.ListLocations(context.Background())
	require.NoError(t, err)
	assert.Len(t, locations, 2)
}

func TestReportService_Summary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	l1 := testutil.CreateLocation(t, db, "L1")
	l2 := testutil.CreateLocation(t, db, "L2")
	l3 := testutil.CreateLocation(t, db, "L3")

	busy := testutil.CreateStaff(t, db, "Busy", "busy@example.com", "pw")
	idle := testutil.CreateStaff(t, db, "Idle", "idle@example.com", "pw")
	unassigned := testutil.CreateStaff(t, db, "Unassigned", "none@example.com", "pw")

	testutil.Assign(t, db, busy.ID, l1.ID)
	testutil.Assign(t, db, busy.ID, l2.ID)
	testutil.Assign(t, db, idle.ID, l3.ID)

	now := time.Now()
	testutil.CreateFeedback(t, db, l1.ID, 4, now)
	testutil.CreateFeedback(t, db, l2.ID, 2, now)
	// (5+4+3+3)/4 = 3.75 must not be truncated
	odd := models.Feedback{LocationID: l1.ID, Cleanliness: 5, WaterSoap: 4, Hygiene: 3, Odor: 3}
	require.NoError(t, db.Create(&odd).Error)

	summary, err := NewReportService(db).Summary(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 3, summary.TotalFeedback)
	require.Len(t, summary.StaffPerformance, 3)

	byID := map[uint]StaffPerformance{}
	for _, p := range summary.StaffPerformance {
		byID[p.ID] = p
	}
	assert.Equal(t, "Busy", byID[busy.ID].Name)
	assert.InDelta(t, (4.0+2.0+3.75)/3, byID[busy.ID].AvgRating, 1e-9)
	assert.Equal(t, 0.0, byID[idle.ID].AvgRating)
	assert.Equal(t, 0.0, byID[unassigned.ID].AvgRating)
}

func TestReportService_SummaryEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)

	summary, err := NewReportService(db).Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.TotalFeedback)
	assert.NotNil(t, summary.StaffPerformance)
	assert.Empty(t, summary.StaffPerformance)
}

func TestReportService_RecentFeedback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	l1 := testutil.CreateLocation(t, db, "Market")
	l2 := testutil.CreateLocation(t, db, "Terminal")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 105; i++ {
		loc := l1
		if i%2 == 1 {
			loc = l2
		}
		testutil.CreateFeedback(t, db, loc.ID, 1+i%5, base.Add(time.Duration(i)*time.Second))
	}

	rows, err := NewReportService(db).RecentFeedback(context.Background(), AdminFeedbackLimit)
	require.NoError(t, err)
	require.Len(t, rows, AdminFeedbackLimit)

	// newest first: the last inserted row (i=104, even -> Market)
	assert.Equal(t, "Market", rows[0].LocationName)
	assert.Equal(t, 1+104%5, rows[0].Cleanliness)
	for i := 1; i < len(rows); i++ {
		assert.False(t, rows[i].CreatedAt.After(rows[i-1].CreatedAt), "rows must be newest first")
	}
}

func TestGradeService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	staff := testutil.CreateStaff(t, db, "S1", "s1@example.com", "pw")
	svc := NewGradeService(db)
	ctx := context.Background()

	latest, err := svc.Latest(ctx, staff.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	first, err := svc.Assign(ctx, staff.ID, "A", strPtr("great month"))
	require.NoError(t, err)
	second, err := svc.Assign(ctx, staff.ID, "C", nil)
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	history, err := svc.History(ctx, staff.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "C", history[0].Grade)
	assert.Equal(t, "A", history[1].Grade)
	require.NotNil(t, history[1].Note)
	assert.Equal(t, "great month", *history[1].Note)

	// latest is by creation time, not by best letter
	latest, err = svc.Latest(ctx, staff.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "C", latest.Grade)
}

func TestGradeService_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	staff := testutil.CreateStaff(t, db, "S1", "s1@example.com", "pw")
	svc := NewGradeService(db)
	ctx := context.Background()

	for _, grade := range []string{"", "F", "a", "AA"} {
		_, err := svc.Assign(ctx, staff.ID, grade, nil)
		requireKind(t, err, ErrorInvalidInput)
	}
	_, err := svc.Assign(ctx, 0, "A", nil)
	requireKind(t, err, ErrorInvalidInput)

	_, err = svc.History(ctx, 0)
	requireKind(t, err, ErrorInvalidInput)

	_, err = svc.Assign(ctx, 9999, "A", nil)
	requireKind(t, err, ErrorStorageFailure)
}

func TestDashboardService_ScopedToAssignments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mine := testutil.CreateLocation(t, db, "Mine")
	theirs := testutil.CreateLocation(t, db, "Theirs")
	me := testutil.CreateStaff(t, db, "Me", "me@example.com", "pw")
	other := testutil.CreateStaff(t, db, "Other", "other@example.com", "pw")
	testutil.Assign(t, db, me.ID, mine.ID)
	testutil.Assign(t, db, other.ID, theirs.ID)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 60; i++ {
		testutil.CreateFeedback(t, db, mine.ID, 3, base.Add(time.Duration(i)*time.Second))
	}
	testutil.CreateFeedback(t, db, theirs.ID, 1, time.Now())

	grades := NewGradeService(db)
	_, err := grades.Assign(context.Background(), me.ID, "B", nil)
	require.NoError(t, err)
	_, err = grades.Assign(context.Background(), other.ID, "E", nil)
	require.NoError(t, err)

	dash, err := NewDashboardService(db).ForStaff(context.Background(), me.ID)
	require.NoError(t, err)

	require.Len(t, dash.Locations, 1)
	assert.Equal(t, mine.ID, dash.Locations[0].ID)
	require.Len(t, dash.Feedback, DashboardFeedbackLimit)
	for _, f := range dash.Feedback {
		assert.Equal(t, mine.ID, f.LocationID)
	}
	require.NotNil(t, dash.LatestGrade)
	assert.Equal(t, "B", dash.LatestGrade.Grade)
}

func TestDashboardService_NoAssignments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	loc := testutil.CreateLocation(t, db, "L1")
	testutil.CreateFeedback(t, db, loc.ID, 4, time.Now())
	lonely := testutil.CreateStaff(t, db, "Lonely", "lonely@example.com", "pw")

	dash, err := NewDashboardService(db).ForStaff(context.Background(), lonely.ID)
	require.NoError(t, err)

	assert.NotNil(t, dash.Locations)
	assert.Empty(t, dash.Locations)
	assert.NotNil(t, dash.Feedback)
	assert.Empty(t, dash.Feedback)
	assert.Nil(t, dash.LatestGrade)
}

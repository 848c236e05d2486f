package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/weekplan-api/internal/dto"
	"github.com/noah-isme/weekplan-api/internal/models"
	appErrors "github.com/noah-isme/weekplan-api/pkg/errors"
)

type memoryCourseRepo struct {
	courses []models.Course
	err     error
}

func (m *memoryCourseRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Course
	for _, course := range m.courses {
		if course.OwnerID == ownerID {
			out = append(out, course)
		}
	}
	return out, nil
}

func (m *memoryCourseRepo) Upsert(ctx context.Context, course *models.Course) error {
	if m.err != nil {
		return m.err
	}
	for i, existing := range m.courses {
		if existing.OwnerID == course.OwnerID && existing.CourseCode == course.CourseCode {
			course.ID = existing.ID
			m.courses[i] = *course
			return nil
		}
	}
	m.courses = append(m.courses, *course)
	return nil
}

func (m *memoryCourseRepo) Delete(ctx context.Context, ownerID, id string) error {
	for i, existing := range m.courses {
		if existing.OwnerID == ownerID && existing.ID == id {
			m.courses = append(m.courses[:i], m.courses[i+1:]...)
			return nil
		}
	}
	return appErrors.ErrNotFound
}

func icsCalendar(lines ...string) string {
	body := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//weekplan//test//EN"}, lines...)
	body = append(body, "END:VCALENDAR")
	return strings.Join(body, "\r\n") + "\r\n"
}

func TestCourseServiceUpsertNormalizes(t *testing.T) {
	repo := &memoryCourseRepo{}
	svc := NewCourseService(repo, nil, nil, 0, nil, nil)

	course, err := svc.Upsert(context.Background(), "user-1", dto.UpsertCourseRequest{
		CourseCode: " cs101 ",
		Name:       "Intro",
		Schedule:   []models.RecurringTimeSlot{{DayOfWeek: "mon", StartTime: "09:00", EndTime: "10:00"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "CS101", course.CourseCode)
	assert.Equal(t, "Monday", course.Schedule[0].DayOfWeek)
	assert.NotEmpty(t, course.ID)

	again, err := svc.Upsert(context.Background(), "user-1", dto.UpsertCourseRequest{CourseCode: "CS101", Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, course.ID, again.ID)

	courses, err := svc.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Renamed", courses[0].Name)
}

func TestCourseServiceUpsertValidation(t *testing.T) {
	svc := NewCourseService(&memoryCourseRepo{}, nil, nil, 0, nil, nil)

	_, err := svc.Upsert(context.Background(), "user-1", dto.UpsertCourseRequest{
		CourseCode: "CS101",
		Schedule:   []models.RecurringTimeSlot{{DayOfWeek: "Monday", StartTime: "9am", EndTime: "10:00"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceListEmpty(t *testing.T) {
	svc := NewCourseService(&memoryCourseRepo{}, nil, nil, 0, nil, nil)

	courses, err := svc.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)
}

func TestCourseServiceDelete(t *testing.T) {
	repo := &memoryCourseRepo{}
	svc := NewCourseService(repo, nil, nil, 0, nil, nil)
	course, err := svc.Upsert(context.Background(), "user-1", dto.UpsertCourseRequest{CourseCode: "CS101"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "user-2", course.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, svc.Delete(context.Background(), "user-1", course.ID))
	assert.Empty(t, repo.courses)
}

func storedKeys(repo *memoryCacheRepo, userID string) int {
	n := 0
	for key := range repo.items {
		if strings.Contains(key, ":"+storedAnalysisKind(userID)+":") {
			n++
		}
	}
	return n
}

func TestCourseServiceEditsEvictStoredAnalysis(t *testing.T) {
	ctx := context.Background()
	cacheRepo := newMemoryCacheRepo()
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	courses := NewCourseService(&memoryCourseRepo{}, nil, nil, 0, nil, cacheSvc)
	academic := NewAcademicService(AcademicServiceParams{Courses: courses, Cache: cacheSvc})

	course, err := courses.Upsert(ctx, "user-1", dto.UpsertCourseRequest{CourseCode: "CS101"})
	require.NoError(t, err)
	_, err = courses.Upsert(ctx, "user-2", dto.UpsertCourseRequest{CourseCode: "MA201"})
	require.NoError(t, err)

	for _, user := range []string{"user-1", "user-2"} {
		_, hit, err := academic.AnalyzeStored(ctx, user)
		require.NoError(t, err)
		assert.False(t, hit)
	}
	_, hit, err := academic.AnalyzeStored(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, hit)
	require.Equal(t, 1, storedKeys(cacheRepo, "user-1"))

	_, err = courses.Upsert(ctx, "user-1", dto.UpsertCourseRequest{CourseCode: "CS102"})
	require.NoError(t, err)
	assert.Zero(t, storedKeys(cacheRepo, "user-1"))
	assert.Equal(t, 1, storedKeys(cacheRepo, "user-2"))

	_, _, err = academic.AnalyzeStored(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 1, storedKeys(cacheRepo, "user-1"))

	require.NoError(t, courses.Delete(ctx, "user-1", course.ID))
	assert.Zero(t, storedKeys(cacheRepo, "user-1"))

	_, _, err = academic.AnalyzeStored(ctx, "user-1")
	require.NoError(t, err)
	_, err = courses.ImportICS(ctx, "user-1", strings.NewReader(icsCalendar(
		"BEGIN:VEVENT",
		"UID:cs301@example.edu",
		"SUMMARY:CS301 - Compilers",
		"DTSTART:20240902T090000",
		"DTEND:20240902T103000",
		"RRULE:FREQ=WEEKLY;BYDAY=MO",
		"END:VEVENT",
	)))
	require.NoError(t, err)
	assert.Zero(t, storedKeys(cacheRepo, "user-1"))
	assert.Equal(t, 1, storedKeys(cacheRepo, "user-2"))
}

func TestCourseServiceImportICS(t *testing.T) {
	repo := &memoryCourseRepo{}
	svc := NewCourseService(repo, nil, nil, 0, time.UTC, nil)
	calendar := icsCalendar(
		"BEGIN:VEVENT",
		"UID:cs101@test",
		"SUMMARY:CS101 - Intro to Programming",
		"DTSTART:20240108T090000",
		"DTEND:20240108T103000",
		"RRULE:FREQ=WEEKLY;BYDAY=MO,WE",
		"LOCATION:Engineering 101",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:math150@test",
		"SUMMARY:MATH 150: Calculus",
		"DTSTART:20240109T130000Z",
		"DTEND:20240109T140000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:untitled@test",
		"DTSTART:20240110T090000",
		"DTEND:20240110T100000",
		"END:VEVENT",
	)

	resp, err := svc.ImportICS(context.Background(), "user-1", strings.NewReader(calendar))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Skipped)
	require.Len(t, resp.Imported, 2)

	cs := resp.Imported[0]
	assert.Equal(t, "CS101", cs.CourseCode)
	assert.Equal(t, "Intro to Programming", cs.Name)
	assert.Equal(t, models.CourseLocation{Building: "Engineering", Room: "101"}, cs.Location)
	assert.Equal(t, models.RecurringSchedule{
		{DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:30"},
		{DayOfWeek: "Wednesday", StartTime: "09:00", EndTime: "10:30"},
	}, cs.Schedule)

	math := resp.Imported[1]
	assert.Equal(t, "MATH150", math.CourseCode)
	assert.Equal(t, "Calculus", math.Name)
	assert.Equal(t, models.RecurringSchedule{{DayOfWeek: "Tuesday", StartTime: "13:00", EndTime: "14:00"}}, math.Schedule)

	assert.Len(t, repo.courses, 2)
}

func TestCourseServiceImportICSShiftsWeeklyDaysAcrossMidnight(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	repo := &memoryCourseRepo{}
	svc := NewCourseService(repo, nil, nil, 0, newYork, nil)
	calendar := icsCalendar(
		"BEGIN:VEVENT",
		"UID:night@test",
		"SUMMARY:CS410 - Night Seminar",
		"DTSTART:20240902T010000Z",
		"DTEND:20240902T020000Z",
		"RRULE:FREQ=WEEKLY;BYDAY=MO,WE",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:day@test",
		"SUMMARY:CS420 - Day Lab",
		"DTSTART:20240902T150000Z",
		"DTEND:20240902T160000Z",
		"RRULE:FREQ=WEEKLY;BYDAY=MO,SU",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:tokyo@test",
		"SUMMARY:CS430 - Remote Studio",
		"DTSTART;TZID=Asia/Tokyo:20240902T080000",
		"DTEND;TZID=Asia/Tokyo:20240902T090000",
		"RRULE:FREQ=WEEKLY;BYDAY=MO",
		"END:VEVENT",
	)

	resp, err := svc.ImportICS(context.Background(), "user-1", strings.NewReader(calendar))
	require.NoError(t, err)
	require.Len(t, resp.Imported, 3)

	assert.Equal(t, models.RecurringSchedule{
		{DayOfWeek: "Sunday", StartTime: "21:00", EndTime: "22:00"},
		{DayOfWeek: "Tuesday", StartTime: "21:00", EndTime: "22:00"},
	}, resp.Imported[0].Schedule)
	assert.Equal(t, models.RecurringSchedule{
		{DayOfWeek: "Monday", StartTime: "11:00", EndTime: "12:00"},
		{DayOfWeek: "Sunday", StartTime: "11:00", EndTime: "12:00"},
	}, resp.Imported[1].Schedule)
	assert.Equal(t, models.RecurringSchedule{
		{DayOfWeek: "Sunday", StartTime: "19:00", EndTime: "20:00"},
	}, resp.Imported[2].Schedule)
}

func TestDayShift(t *testing.T) {
	written := time.Date(2024, 9, 2, 1, 0, 0, 0, time.UTC)
	newYork := time.FixedZone("EDT", -4*3600)
	tokyo := time.FixedZone("JST", 9*3600)

	assert.Equal(t, -1, dayShift(written, written.In(newYork)))
	assert.Equal(t, 0, dayShift(written, written.In(tokyo)))
	assert.Equal(t, 1, dayShift(written.Add(20*time.Hour), written.Add(20*time.Hour).In(tokyo)))
	assert.Equal(t, 0, dayShift(written, written))
}

func TestCourseServiceImportICSTooLarge(t *testing.T) {
	svc := NewCourseService(&memoryCourseRepo{}, nil, nil, 16, nil, nil)

	_, err := svc.ImportICS(context.Background(), "user-1", strings.NewReader(icsCalendar()))
	assert.True(t, errors.Is(err, appErrors.ErrPayloadTooLarge))
}

func TestSplitSummary(t *testing.T) {
	cases := []struct {
		summary string
		code    string
		name    string
	}{
		{"CS101 - Intro", "CS101", "Intro"},
		{"MATH 150: Calculus", "MATH150", "Calculus"},
		{"ENGR-201", "ENGR201", "ENGR-201"},
		{"Yoga", "YOGA", "Yoga"},
	}
	for _, tc := range cases {
		code, name := splitSummary(tc.summary)
		assert.Equal(t, tc.code, code, tc.summary)
		assert.Equal(t, tc.name, name, tc.summary)
	}
}

func TestSplitLocation(t *testing.T) {
	assert.Equal(t, models.CourseLocation{Building: "Student Center", Room: "B12"}, splitLocation("Student Center B12"))
	assert.Equal(t, models.CourseLocation{Building: "Library"}, splitLocation(" Library "))
}

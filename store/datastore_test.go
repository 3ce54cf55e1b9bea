package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SharmARohitt/Gati-sub001/config"
	"github.com/SharmARohitt/Gati-sub001/models"
)

var fixtureStates = []string{
	"Uttar Pradesh", "Maharashtra", "Bihar", "West Bengal", "Madhya Pradesh",
	"Tamil Nadu", "Rajasthan", "Karnataka", "Gujarat", "Andhra Pradesh",
	"Odisha", "Telangana", "Kerala", "Jharkhand", "Assam",
	"Punjab", "Chhattisgarh", "Haryana", "Delhi", "Jammu and Kashmir",
}

const fixtureBaseDay = "2025-06-01"

// fixtureRecords builds 20 states with three daily records each. Total
// enrolments across the fixture sum to exactly 1,389,000,000.
func fixtureRecords() []models.RawUpdateRecord {
	base, _ := time.Parse("2006-01-02", fixtureBaseDay)

	var records []models.RawUpdateRecord
	for i, state := range fixtureStates {
		pincode := fmt.Sprintf("%06d", 110001+i)
		for day := 0; day < 3; day++ {
			records = append(records, models.RawUpdateRecord{
				Pincode:            pincode,
				DistrictName:       state + " Central",
				StateName:          state,
				Date:               base.AddDate(0, 0, day),
				Enrolments:         23_150_000,
				BiometricUpdates:   int64(1000 + i*10 + day),
				DemographicUpdates: int64(500 + i*5 + day),
				AgeBuckets: models.AgeBuckets{
					Age0To5:   3_150_000,
					Age5To17:  8_000_000,
					Age18Plus: 12_000_000,
				},
			})
		}
	}
	return records
}

func newTestStore(t *testing.T, loader RecordLoader) *Store {
	t.Helper()
	policy := config.LoadAnalyticsPolicy()
	return New(policy, loader, config.NewCaches(policy))
}

func newLoadedStore(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t, &StaticLoader{Records: fixtureRecords()})
	require.NoError(t, s.LoadAllData(context.Background()))
	return s
}

// countingLoader tracks how many times Load actually runs.
type countingLoader struct {
	inner RecordLoader
	loads atomic.Int32
	delay time.Duration
}

func (l *countingLoader) Load(ctx context.Context) ([]models.RawUpdateRecord, error) {
	l.loads.Add(1)
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	return l.inner.Load(ctx)
}

// flappingLoader fails a fixed number of times before succeeding.
type flappingLoader struct {
	failures int
	records  []models.RawUpdateRecord
}

func (l *flappingLoader) Load(ctx context.Context) ([]models.RawUpdateRecord, error) {
	if l.failures > 0 {
		l.failures--
		return nil, fmt.Errorf("source offline")
	}
	return l.records, nil
}

func TestNationalOverviewTotals(t *testing.T) {
	s := newLoadedStore(t)

	overview, err := s.GetNationalOverview()
	require.NoError(t, err)

	assert.Equal(t, int64(1_389_000_000), overview.TotalEnrolments)
	assert.Equal(t, 20, overview.StatesCount)
	assert.Equal(t, 20, overview.DistrictsCount)
	assert.Equal(t, 20, overview.PincodesCount)
	assert.Len(t, overview.RecentTrends, 30)

	total := overview.RiskDistribution.Low + overview.RiskDistribution.Medium +
		overview.RiskDistribution.High + overview.RiskDistribution.Critical
	assert.Equal(t, 20, total)

	// Same snapshot, same answer.
	again, err := s.GetNationalOverview()
	require.NoError(t, err)
	assert.Equal(t, overview.TotalEnrolments, again.TotalEnrolments)
	assert.Equal(t, overview.RiskDistribution, again.RiskDistribution)
}

func TestNationalTotalsMatchStateSums(t *testing.T) {
	s := newLoadedStore(t)

	overview, err := s.GetNationalOverview()
	require.NoError(t, err)
	states, err := s.GetStateAggregations()
	require.NoError(t, err)
	require.Len(t, states, 20)

	var enrol, bio, demo int64
	for _, st := range states {
		enrol += st.TotalEnrolments
		bio += st.TotalBiometric
		demo += st.TotalDemographic
	}
	assert.Equal(t, enrol, overview.TotalEnrolments)
	assert.Equal(t, bio, overview.TotalBiometric)
	assert.Equal(t, demo, overview.TotalDemographic)
}

func TestQueriesBeforeLoadFail(t *testing.T) {
	s := newTestStore(t, &StaticLoader{Records: fixtureRecords()})

	var notLoaded *models.DataNotLoadedError

	_, err := s.GetNationalOverview()
	require.ErrorAs(t, err, &notLoaded)
	assert.Equal(t, models.LoadUnloaded, notLoaded.State)

	_, err = s.GetStateTrends("Kerala", 30)
	assert.ErrorAs(t, err, &notLoaded)

	_, err = s.GetDataCounts()
	assert.ErrorAs(t, err, &notLoaded)
}

func TestGetStateByCode(t *testing.T) {
	s := newLoadedStore(t)

	byCode, err := s.GetStateByCode("kl")
	require.NoError(t, err)
	assert.Equal(t, "Kerala", byCode.StateName)
	assert.Equal(t, "KL", byCode.StateCode)

	byName, err := s.GetStateByCode("KERALA")
	require.NoError(t, err)
	assert.Equal(t, byCode.StateName, byName.StateName)

	var notFound *models.EntityNotFoundError
	_, err = s.GetStateByCode("XX")
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "state", notFound.EntityType)
}

func TestSearchByPincode(t *testing.T) {
	s := newLoadedStore(t)

	summary, err := s.SearchByPincode("110001")
	require.NoError(t, err)
	assert.Equal(t, "Uttar Pradesh", summary.StateName)
	assert.Equal(t, int64(3*23_150_000), summary.TotalEnrolments)
	assert.Equal(t, 3, summary.RecordsCount)
	assert.True(t, summary.LastDate.After(summary.FirstDate))

	// Well-formed but absent: not found, never a crash.
	var notFound *models.EntityNotFoundError
	_, err = s.SearchByPincode("000000")
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "pincode", notFound.EntityType)

	var badParam *models.InvalidParameterError
	_, err = s.SearchByPincode("12ab56")
	require.ErrorAs(t, err, &badParam)
	_, err = s.SearchByPincode("1234567")
	assert.ErrorAs(t, err, &badParam)
}

func TestGetDistrictsByState(t *testing.T) {
	s := newLoadedStore(t)

	districts, err := s.GetDistrictsByState("kerala")
	require.NoError(t, err)
	require.Len(t, districts, 1)
	assert.Equal(t, "Kerala Central", districts[0].DistrictName)
	assert.Equal(t, 1, districts[0].PincodesCount)
	assert.Equal(t, int64(3*23_150_000), districts[0].TotalEnrolments)

	var notFound *models.EntityNotFoundError
	_, err = s.GetDistrictsByState("Atlantis")
	require.ErrorAs(t, err, &notFound)
}

func TestStateTrendsZeroFill(t *testing.T) {
	s := newLoadedStore(t)

	trends, err := s.GetStateTrends("Kerala", 30)
	require.NoError(t, err)
	require.Len(t, trends, 30)

	var sum int64
	for i, p := range trends {
		if i > 0 {
			assert.Equal(t, trends[i-1].Date.AddDate(0, 0, 1), p.Date)
		}
		sum += p.Enrolments
	}
	// Only 3 of the 30 days carry data; the rest are zero-filled.
	assert.Equal(t, int64(3*23_150_000), sum)

	var badParam *models.InvalidParameterError
	_, err = s.GetStateTrends("Kerala", 0)
	require.ErrorAs(t, err, &badParam)
}

func TestNationalTrendsWindow(t *testing.T) {
	s := newLoadedStore(t)

	trends, err := s.GetNationalTrends(7)
	require.NoError(t, err)
	require.Len(t, trends, 7)

	var sum int64
	for _, p := range trends {
		sum += p.Enrolments
	}
	assert.Equal(t, int64(1_389_000_000), sum)
}

func TestConcurrentLoadRunsOnce(t *testing.T) {
	loader := &countingLoader{
		inner: &StaticLoader{Records: fixtureRecords()},
		delay: 20 * time.Millisecond,
	}
	s := newTestStore(t, loader)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.LoadAllData(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loader.loads.Load())

	// Loaded is terminal until a reload; repeat calls are no-ops.
	require.NoError(t, s.LoadAllData(context.Background()))
	assert.Equal(t, int32(1), loader.loads.Load())
}

func TestLoadFailureThenRetry(t *testing.T) {
	loader := &flappingLoader{failures: 1, records: fixtureRecords()}
	s := newTestStore(t, loader)

	err := s.LoadAllData(context.Background())
	require.Error(t, err)

	status := s.GetLoadingStatus()
	assert.Equal(t, models.LoadError, status.State)
	assert.NotEmpty(t, status.LastError)

	var notLoaded *models.DataNotLoadedError
	_, err = s.GetNationalOverview()
	require.ErrorAs(t, err, &notLoaded)

	// The next attempt starts from scratch and succeeds.
	require.NoError(t, s.LoadAllData(context.Background()))
	assert.Equal(t, models.LoadLoaded, s.GetLoadingStatus().State)

	counts, err := s.GetDataCounts()
	require.NoError(t, err)
	assert.Equal(t, 20, counts.States)
}

func TestEmptyLoadIsError(t *testing.T) {
	s := newTestStore(t, &StaticLoader{})
	require.Error(t, s.LoadAllData(context.Background()))
	assert.Equal(t, models.LoadError, s.GetLoadingStatus().State)
}

func TestReloadReplacesSnapshot(t *testing.T) {
	static := &StaticLoader{Records: fixtureRecords()}
	loader := &countingLoader{inner: static}
	s := newTestStore(t, loader)
	require.NoError(t, s.LoadAllData(context.Background()))

	counts, err := s.GetDataCounts()
	require.NoError(t, err)
	assert.Equal(t, 60, counts.Records)

	static.Records = fixtureRecords()[:30]
	require.NoError(t, s.Reload(context.Background()))
	assert.Equal(t, int32(2), loader.loads.Load())

	counts, err = s.GetDataCounts()
	require.NoError(t, err)
	assert.Equal(t, 30, counts.Records)
	assert.Equal(t, 10, counts.States)
}

func TestRiskScoreForState(t *testing.T) {
	s := newLoadedStore(t)

	score, err := s.RiskScoreForState("KL")
	require.NoError(t, err)
	assert.Equal(t, "Kerala", score.EntityID)
	assert.GreaterOrEqual(t, score.Overall, 0.0)
	assert.LessOrEqual(t, score.Overall, 100.0)
	assert.NotEmpty(t, score.Recommendations)

	var notFound *models.EntityNotFoundError
	_, err = s.RiskScoreForState("nowhere")
	require.ErrorAs(t, err, &notFound)
}

func TestCompareAllRiskScores(t *testing.T) {
	s := newLoadedStore(t)

	scores, err := s.CompareAllRiskScores()
	require.NoError(t, err)
	require.Len(t, scores, 20)
	for i := 1; i < len(scores); i++ {
		assert.GreaterOrEqual(t, scores[i-1].Overall, scores[i].Overall)
	}
}

func TestDetectAllAnomaliesOrdering(t *testing.T) {
	s := newLoadedStore(t)

	anomalies, err := s.DetectAllAnomalies()
	require.NoError(t, err)
	for i := 1; i < len(anomalies); i++ {
		assert.GreaterOrEqual(t, anomalies[i-1].Severity.Rank(), anomalies[i].Severity.Rank())
	}
}

func TestQualityReport(t *testing.T) {
	s := newLoadedStore(t)

	report, err := s.GetQualityReport()
	require.NoError(t, err)
	assert.Equal(t, 60, report.TotalRecords)
	assert.Equal(t, 20, report.UniqueStates)
	assert.Zero(t, report.NegativeValues)
	assert.Zero(t, report.MissingDays)
	assert.Contains(t, report.Issues, "no critical issues detected")
}

func TestQualityReportFlagsGaps(t *testing.T) {
	base, _ := time.Parse("2006-01-02", fixtureBaseDay)
	records := []models.RawUpdateRecord{
		{Pincode: "695001", DistrictName: "Thiruvananthapuram", StateName: "Kerala", Date: base, Enrolments: 100},
		{Pincode: "695001", DistrictName: "Thiruvananthapuram", StateName: "Kerala", Date: base.AddDate(0, 0, 9), Enrolments: -5},
	}
	s := newTestStore(t, &StaticLoader{Records: records})
	require.NoError(t, s.LoadAllData(context.Background()))

	report, err := s.GetQualityReport()
	require.NoError(t, err)
	assert.Equal(t, 8, report.MissingDays)
	assert.Equal(t, 1, report.NegativeValues)
	assert.NotContains(t, report.Issues, "no critical issues detected")
}

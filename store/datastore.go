package store

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/SharmARohitt/Gati-sub001/analytics"
	"github.com/SharmARohitt/Gati-sub001/config"
	"github.com/SharmARohitt/Gati-sub001/models"
)

// Store owns the immutable raw-record snapshot and serves every
// aggregate query. It is constructed once in main and handed to the
// handlers; there are no package-level singletons.
type Store struct {
	policy config.AnalyticsPolicy
	loader RecordLoader
	caches *config.Caches

	forecaster *analytics.Forecaster
	detector   *analytics.AnomalyDetector
	scorer     *analytics.RiskScorer
	patterns   *analytics.PatternAnalyzer

	// Concurrent loads collapse onto one in-flight call.
	group singleflight.Group

	mu       sync.Mutex // guards the lifecycle fields below
	state    models.LoadState
	lastErr  error
	loadedAt time.Time
	snap     *snapshot
}

// snapshot is the immutable view built from one successful load. It is
// replaced wholesale on reload and never patched.
type snapshot struct {
	records []models.RawUpdateRecord
	maxDate time.Time
	quality models.DataQualityReport
}

func New(policy config.AnalyticsPolicy, loader RecordLoader, caches *config.Caches) *Store {
	forecaster := &analytics.Forecaster{Policy: policy}
	s := &Store{
		policy:     policy,
		loader:     loader,
		caches:     caches,
		forecaster: forecaster,
		detector:   &analytics.AnomalyDetector{Policy: policy},
		scorer:     &analytics.RiskScorer{Policy: policy},
		patterns:   &analytics.PatternAnalyzer{Policy: policy, Forecaster: forecaster},
		state:      models.LoadUnloaded,
	}
	return s
}

// LoadAllData is idempotent: once loaded it returns immediately, and
// concurrent callers during a load all await the same in-flight
// operation. A failed load leaves the store in the error state and the
// next call retries from scratch.
func (s *Store) LoadAllData(ctx context.Context) error {
	s.mu.Lock()
	if s.state == models.LoadLoaded {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	ch := s.group.DoChan("load", func() (interface{}, error) {
		return nil, s.doLoad()
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		// The in-flight load keeps running for the other waiters.
		return ctx.Err()
	}
}

// Reload discards the current snapshot state and loads fresh, sharing
// the in-flight call with any concurrent loaders.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.state = models.LoadUnloaded
	s.mu.Unlock()
	return s.LoadAllData(ctx)
}

func (s *Store) doLoad() error {
	s.mu.Lock()
	s.state = models.LoadLoading
	s.mu.Unlock()

	log.Printf("Loading raw identity-update records...")
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), s.policy.LoadTimeout)
	defer cancel()

	records, err := s.loader.Load(ctx)
	if err == nil && len(records) == 0 {
		err = fmt.Errorf("loader returned no records")
	}
	if err != nil {
		if ctx.Err() != nil {
			err = &models.UpstreamUnavailableError{Upstream: "raw data source", Cause: err}
		}
		s.mu.Lock()
		s.state = models.LoadError
		s.lastErr = err
		s.mu.Unlock()
		log.Printf("Raw data load failed: %v", err)
		return err
	}

	snap := buildSnapshot(records)

	s.mu.Lock()
	s.snap = snap
	s.state = models.LoadLoaded
	s.loadedAt = time.Now()
	s.lastErr = nil
	s.mu.Unlock()

	// Aggregates computed against the previous snapshot are stale now.
	s.caches.Flush()

	log.Printf("Loaded %d records across %d states in %v (date range %s to %s)",
		snap.quality.TotalRecords, snap.quality.UniqueStates, time.Since(start),
		snap.quality.DateRangeStart.Format("2006-01-02"),
		snap.quality.DateRangeEnd.Format("2006-01-02"))
	for _, issue := range snap.quality.Issues {
		log.Printf("Data quality: %s", issue)
	}
	return nil
}

func buildSnapshot(records []models.RawUpdateRecord) *snapshot {
	sorted := make([]models.RawUpdateRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var maxDate time.Time
	if len(sorted) > 0 {
		maxDate = sorted[len(sorted)-1].Date
	}

	return &snapshot{
		records: sorted,
		maxDate: maxDate,
		quality: buildQualityReport(sorted),
	}
}

// currentSnapshot returns the loaded snapshot or a DataNotLoadedError
// carrying the store state.
func (s *Store) currentSnapshot() (*snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.LoadLoaded || s.snap == nil {
		return nil, &models.DataNotLoadedError{State: s.state}
	}
	return s.snap, nil
}

// GetLoadingStatus is introspection only; no side effects.
func (s *Store) GetLoadingStatus() models.LoadingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := models.LoadingStatus{State: s.state, LoadedAt: s.loadedAt}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	return status
}

func (s *Store) GetDataCounts() (models.DataCounts, error) {
	snap, err := s.currentSnapshot()
	if err != nil {
		return models.DataCounts{}, err
	}
	return models.DataCounts{
		Records:   snap.quality.TotalRecords,
		States:    snap.quality.UniqueStates,
		Districts: snap.quality.UniqueDistricts,
		Pincodes:  snap.quality.UniquePincodes,
	}, nil
}

// GetQualityReport returns the audit report built at load time.
func (s *Store) GetQualityReport() (models.DataQualityReport, error) {
	snap, err := s.currentSnapshot()
	if err != nil {
		return models.DataQualityReport{}, err
	}
	return snap.quality, nil
}

// stateData is the shared intermediate for every state-level query:
// the aggregations plus the composite scores and anomaly counts that
// produced their risk levels.
type stateData struct {
	aggs          []models.StateAggregation
	scores        map[string]float64
	anomalyCounts map[string]int
}

// computeStateData builds (or serves from cache) the full state-level
// aggregation with risk levels attached.
func (s *Store) computeStateData() (*stateData, error) {
	snap, err := s.currentSnapshot()
	if err != nil {
		return nil, err
	}

	cacheKey := config.GetCacheKey("states", "all")
	if cached, found := s.caches.Aggregation.Get(cacheKey); found {
		return cached.(*stateData), nil
	}

	type stateAccum struct {
		agg       models.StateAggregation
		districts map[string]struct{}
		pincodes  map[string]struct{}
		recentBio int64
		recentDem int64
	}

	windowStart := snap.maxDate.AddDate(0, 0, -s.policy.FreshnessWindowDays)
	accums := make(map[string]*stateAccum)

	for _, rec := range snap.records {
		acc, ok := accums[rec.StateName]
		if !ok {
			acc = &stateAccum{
				agg: models.StateAggregation{
					StateCode: config.StateCode(rec.StateName),
					StateName: rec.StateName,
				},
				districts: make(map[string]struct{}),
				pincodes:  make(map[string]struct{}),
			}
			accums[rec.StateName] = acc
		}

		acc.agg.TotalEnrolments += rec.Enrolments
		acc.agg.TotalBiometric += rec.BiometricUpdates
		acc.agg.TotalDemographic += rec.DemographicUpdates
		acc.agg.AgeDistribution.Age0To5 += rec.AgeBuckets.Age0To5
		acc.agg.AgeDistribution.Age5To17 += rec.AgeBuckets.Age5To17
		acc.agg.AgeDistribution.Age18Plus += rec.AgeBuckets.Age18Plus
		acc.districts[rec.DistrictName] = struct{}{}
		acc.pincodes[rec.Pincode] = struct{}{}

		if !rec.Date.Before(windowStart) {
			acc.recentBio += rec.BiometricUpdates
			acc.recentDem += rec.DemographicUpdates
		}
	}

	data := &stateData{
		scores:        make(map[string]float64),
		anomalyCounts: make(map[string]int),
	}

	names := make([]string, 0, len(accums))
	for name := range accums {
		names = append(names, name)
	}
	sort.Strings(names)

	var totalEnrolments int64
	for _, name := range names {
		acc := accums[name]
		acc.agg.DistrictsCount = len(acc.districts)
		acc.agg.PincodesCount = len(acc.pincodes)

		population := config.StatePopulation(name)
		coverage := float64(acc.agg.TotalEnrolments) / float64(population) * 100
		if coverage > 100 {
			coverage = 100
		}
		acc.agg.Coverage = coverage
		acc.agg.Freshness = freshness(
			acc.recentBio, acc.agg.TotalBiometric,
			acc.recentDem, acc.agg.TotalDemographic,
			s.policy.FreshnessBiometricShare)

		totalEnrolments += acc.agg.TotalEnrolments
	}

	// Anomaly counts feed the composite score, which in turn decides
	// each state's risk level through the shared bucketing.
	nationalAverage := 0.0
	if len(names) > 0 {
		nationalAverage = float64(totalEnrolments) / float64(len(names))
	}

	for _, name := range names {
		trends := buildTrends(snap, name, s.policy.OverviewTrendDays)
		count := 0
		for _, metric := range models.TrackedMetrics {
			if a := s.detector.DetectForSeries(name, metric, trends); a != nil {
				count++
			}
		}
		data.anomalyCounts[name] = count
	}

	for _, name := range names {
		acc := accums[name]
		score := s.scorer.CalculateAdvancedRiskScore(acc.agg, nationalAverage, data.anomalyCounts[name])
		acc.agg.RiskLevel = score.Level
		data.scores[name] = score.Overall
		data.aggs = append(data.aggs, acc.agg)
	}

	s.caches.Aggregation.Set(cacheKey, data, s.policy.AggregationCacheTTL)
	return data, nil
}

// freshness is the share of updates falling inside the recency window,
// weighted toward biometric updates since those expire fastest.
func freshness(recentBio, totalBio, recentDem, totalDem int64, bioShare float64) float64 {
	if totalBio == 0 && totalDem == 0 {
		return 0
	}

	bioRatio := 0.0
	demRatio := 0.0
	switch {
	case totalBio == 0:
		// Only demographic updates exist; they carry the whole index.
		demRatio = float64(recentDem) / float64(totalDem)
		return demRatio * 100
	case totalDem == 0:
		bioRatio = float64(recentBio) / float64(totalBio)
		return bioRatio * 100
	}

	bioRatio = float64(recentBio) / float64(totalBio)
	demRatio = float64(recentDem) / float64(totalDem)
	return (bioShare*bioRatio + (1-bioShare)*demRatio) * 100
}

// GetStateAggregations returns every state's aggregate, sorted by name.
func (s *Store) GetStateAggregations() ([]models.StateAggregation, error) {
	data, err := s.computeStateData()
	if err != nil {
		return nil, err
	}
	out := make([]models.StateAggregation, len(data.aggs))
	copy(out, data.aggs)
	return out, nil
}

// GetStateByCode resolves a state by census code first, then by name,
// both case-insensitively.
func (s *Store) GetStateByCode(codeOrName string) (models.StateAggregation, error) {
	data, err := s.computeStateData()
	if err != nil {
		return models.StateAggregation{}, err
	}

	query := strings.TrimSpace(codeOrName)
	if name, ok := config.StateNameForCode(query); ok {
		for _, agg := range data.aggs {
			if strings.EqualFold(agg.StateName, name) {
				return agg, nil
			}
		}
	}
	for _, agg := range data.aggs {
		if strings.EqualFold(agg.StateCode, query) || strings.EqualFold(agg.StateName, query) {
			return agg, nil
		}
	}
	return models.StateAggregation{}, &models.EntityNotFoundError{EntityType: "state", Key: codeOrName}
}

// GetDistrictsByState groups the state's records per district.
func (s *Store) GetDistrictsByState(stateName string) ([]models.DistrictAggregation, error) {
	snap, err := s.currentSnapshot()
	if err != nil {
		return nil, err
	}

	type distAccum struct {
		agg      models.DistrictAggregation
		pincodes map[string]struct{}
	}
	accums := make(map[string]*distAccum)
	var canonical string

	for _, rec := range snap.records {
		if !strings.EqualFold(rec.StateName, stateName) {
			continue
		}
		canonical = rec.StateName
		acc, ok := accums[rec.DistrictName]
		if !ok {
			acc = &distAccum{
				agg: models.DistrictAggregation{
					DistrictName: rec.DistrictName,
					StateName:    rec.StateName,
				},
				pincodes: make(map[string]struct{}),
			}
			accums[rec.DistrictName] = acc
		}
		acc.agg.TotalEnrolments += rec.Enrolments
		acc.agg.TotalBiometric += rec.BiometricUpdates
		acc.agg.TotalDemographic += rec.DemographicUpdates
		acc.pincodes[rec.Pincode] = struct{}{}
	}

	if canonical == "" {
		return nil, &models.EntityNotFoundError{EntityType: "state", Key: stateName}
	}

	out := make([]models.DistrictAggregation, 0, len(accums))
	for _, acc := range accums {
		acc.agg.PincodesCount = len(acc.pincodes)
		out = append(out, acc.agg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DistrictName < out[j].DistrictName
	})
	return out, nil
}

var pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// SearchByPincode aggregates every record for one exact pincode. A
// well-formed code with no records is a not-found, not a bad request.
func (s *Store) SearchByPincode(pincode string) (models.PincodeSummary, error) {
	trimmed := strings.TrimSpace(pincode)
	if !pincodePattern.MatchString(trimmed) {
		return models.PincodeSummary{}, &models.InvalidParameterError{
			Param:  "pincode",
			Reason: "must be a 6-digit code",
		}
	}

	snap, err := s.currentSnapshot()
	if err != nil {
		return models.PincodeSummary{}, err
	}

	summary := models.PincodeSummary{Pincode: trimmed}
	found := false
	for _, rec := range snap.records {
		if rec.Pincode != trimmed {
			continue
		}
		if !found {
			summary.DistrictName = rec.DistrictName
			summary.StateName = rec.StateName
			summary.FirstDate = rec.Date
			found = true
		}
		summary.TotalEnrolments += rec.Enrolments
		summary.TotalBiometric += rec.BiometricUpdates
		summary.TotalDemographic += rec.DemographicUpdates
		summary.LastDate = rec.Date
		summary.RecordsCount++
	}

	if !found {
		return models.PincodeSummary{}, &models.EntityNotFoundError{EntityType: "pincode", Key: trimmed}
	}
	return summary, nil
}

// GetStateTrends builds a fixed-length, date-ascending daily series for
// the trailing window. Missing days come back as zero-valued points so
// downstream consumers always see `days` entries.
func (s *Store) GetStateTrends(stateName string, days int) ([]models.TrendPoint, error) {
	if days < 1 {
		return nil, &models.InvalidParameterError{Param: "days", Reason: "must be at least 1"}
	}

	snap, err := s.currentSnapshot()
	if err != nil {
		return nil, err
	}

	canonical := ""
	for _, rec := range snap.records {
		if strings.EqualFold(rec.StateName, stateName) {
			canonical = rec.StateName
			break
		}
	}
	if canonical == "" {
		return nil, &models.EntityNotFoundError{EntityType: "state", Key: stateName}
	}

	cacheKey := config.GetCacheKey("trends", canonical, days)
	if cached, found := s.caches.Trends.Get(cacheKey); found {
		return cloneTrends(cached.([]models.TrendPoint)), nil
	}

	trends := buildTrends(snap, canonical, days)
	s.caches.Trends.Set(cacheKey, trends, s.policy.TrendsCacheTTL)
	return cloneTrends(trends), nil
}

// GetNationalTrends is the all-states variant of GetStateTrends.
func (s *Store) GetNationalTrends(days int) ([]models.TrendPoint, error) {
	if days < 1 {
		return nil, &models.InvalidParameterError{Param: "days", Reason: "must be at least 1"}
	}
	snap, err := s.currentSnapshot()
	if err != nil {
		return nil, err
	}

	cacheKey := config.GetCacheKey("trends", "national", days)
	if cached, found := s.caches.Trends.Get(cacheKey); found {
		return cloneTrends(cached.([]models.TrendPoint)), nil
	}

	trends := buildTrends(snap, "", days)
	s.caches.Trends.Set(cacheKey, trends, s.policy.TrendsCacheTTL)
	return cloneTrends(trends), nil
}

// buildTrends zero-fills a trailing daily window ending at the snapshot's
// newest date. Empty stateName means national scope.
func buildTrends(snap *snapshot, stateName string, days int) []models.TrendPoint {
	end := snap.maxDate.Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -(days - 1))

	points := make([]models.TrendPoint, days)
	index := make(map[string]*models.TrendPoint, days)
	for i := range points {
		d := start.AddDate(0, 0, i)
		points[i].Date = d
		index[d.Format("2006-01-02")] = &points[i]
	}

	for _, rec := range snap.records {
		if stateName != "" && rec.StateName != stateName {
			continue
		}
		p, ok := index[rec.Date.Format("2006-01-02")]
		if !ok {
			continue
		}
		p.Enrolments += rec.Enrolments
		p.BiometricUpdates += rec.BiometricUpdates
		p.DemographicUpdates += rec.DemographicUpdates
	}
	return points
}

func cloneTrends(trends []models.TrendPoint) []models.TrendPoint {
	out := make([]models.TrendPoint, len(trends))
	copy(out, trends)
	return out
}

// GetNationalOverview sums the state aggregations bottom-up; national
// totals are never recomputed from raw records directly, so they stay
// exactly consistent with the state level.
func (s *Store) GetNationalOverview() (models.NationalOverview, error) {
	snap, err := s.currentSnapshot()
	if err != nil {
		return models.NationalOverview{}, err
	}

	cacheKey := config.GetCacheKey("overview", "national")
	if cached, found := s.caches.Overview.Get(cacheKey); found {
		return cached.(models.NationalOverview), nil
	}

	data, err := s.computeStateData()
	if err != nil {
		return models.NationalOverview{}, err
	}

	overview := models.NationalOverview{StatesCount: len(data.aggs)}

	var populationSum int64
	var freshnessSum float64
	pincodes := make(map[string]struct{})
	for _, agg := range data.aggs {
		overview.TotalEnrolments += agg.TotalEnrolments
		overview.TotalBiometric += agg.TotalBiometric
		overview.TotalDemographic += agg.TotalDemographic
		overview.DistrictsCount += agg.DistrictsCount
		populationSum += config.StatePopulation(agg.StateName)
		freshnessSum += agg.Freshness

		switch agg.RiskLevel {
		case models.RiskCritical:
			overview.RiskDistribution.Critical++
		case models.RiskHigh:
			overview.RiskDistribution.High++
		case models.RiskMedium:
			overview.RiskDistribution.Medium++
		default:
			overview.RiskDistribution.Low++
		}
	}
	for _, rec := range snap.records {
		pincodes[rec.Pincode] = struct{}{}
	}
	overview.PincodesCount = len(pincodes)

	if populationSum > 0 {
		coverage := float64(overview.TotalEnrolments) / float64(populationSum) * 100
		if coverage > 100 {
			coverage = 100
		}
		overview.NationalCoverage = coverage
	}
	if len(data.aggs) > 0 {
		overview.FreshnessIndex = freshnessSum / float64(len(data.aggs))
	}

	overview.RecentTrends = buildTrends(snap, "", s.policy.OverviewTrendDays)

	// High-risk states ranked by composite score descending, ties by
	// ascending coverage (less-covered state surfaces first).
	var highRisk []models.StateAggregation
	for _, agg := range data.aggs {
		if agg.RiskLevel == models.RiskHigh || agg.RiskLevel == models.RiskCritical {
			highRisk = append(highRisk, agg)
		}
	}
	sort.SliceStable(highRisk, func(i, j int) bool {
		si := data.scores[highRisk[i].StateName]
		sj := data.scores[highRisk[j].StateName]
		if si != sj {
			return si > sj
		}
		return highRisk[i].Coverage < highRisk[j].Coverage
	})
	overview.HighRiskStates = highRisk

	s.caches.Overview.Set(cacheKey, overview, s.policy.OverviewCacheTTL)
	return overview, nil
}

// DetectAllAnomalies runs the detector across every (state, metric)
// pair, sorted by severity then deviation magnitude.
func (s *Store) DetectAllAnomalies() ([]models.AnomalyDetection, error) {
	snap, err := s.currentSnapshot()
	if err != nil {
		return nil, err
	}

	states := make(map[string]struct{})
	for _, rec := range snap.records {
		states[rec.StateName] = struct{}{}
	}
	names := make([]string, 0, len(states))
	for name := range states {
		names = append(names, name)
	}
	sort.Strings(names)

	anomalies := make([]models.AnomalyDetection, 0)
	for _, name := range names {
		trends := buildTrends(snap, name, s.policy.OverviewTrendDays)
		for _, metric := range models.TrackedMetrics {
			if a := s.detector.DetectForSeries(name, metric, trends); a != nil {
				anomalies = append(anomalies, *a)
			}
		}
	}

	analytics.SortAnomalies(anomalies)
	return anomalies, nil
}

// RiskScoreForState computes the full composite score for one state.
func (s *Store) RiskScoreForState(codeOrName string) (models.RiskScore, error) {
	agg, err := s.GetStateByCode(codeOrName)
	if err != nil {
		return models.RiskScore{}, err
	}
	data, err := s.computeStateData()
	if err != nil {
		return models.RiskScore{}, err
	}

	nationalAverage := s.nationalAverageEnrolments(data)
	return s.scorer.CalculateAdvancedRiskScore(agg, nationalAverage, data.anomalyCounts[agg.StateName]), nil
}

// CompareAllRiskScores ranks every state's composite score descending.
func (s *Store) CompareAllRiskScores() ([]models.RiskScore, error) {
	data, err := s.computeStateData()
	if err != nil {
		return nil, err
	}
	return s.scorer.CompareRiskScores(data.aggs, s.nationalAverageEnrolments(data), data.anomalyCounts), nil
}

func (s *Store) nationalAverageEnrolments(data *stateData) float64 {
	if len(data.aggs) == 0 {
		return 0
	}
	var total int64
	for _, agg := range data.aggs {
		total += agg.TotalEnrolments
	}
	return float64(total) / float64(len(data.aggs))
}

// DetectPatterns mines one state's trend history.
func (s *Store) DetectPatterns(codeOrName string) ([]models.Pattern, error) {
	agg, err := s.GetStateByCode(codeOrName)
	if err != nil {
		return nil, err
	}
	trends, err := s.GetStateTrends(agg.StateName, s.policy.FreshnessWindowDays)
	if err != nil {
		return nil, err
	}
	return s.patterns.DetectPatterns(agg.StateName, trends), nil
}

// FindCorrelations computes the pairwise metric correlations for one
// state's trend window.
func (s *Store) FindCorrelations(codeOrName string) ([]models.Correlation, error) {
	agg, err := s.GetStateByCode(codeOrName)
	if err != nil {
		return nil, err
	}
	trends, err := s.GetStateTrends(agg.StateName, s.policy.FreshnessWindowDays)
	if err != nil {
		return nil, err
	}
	return analytics.FindCorrelations(trends), nil
}

// Forecaster exposes the ensemble engine for handlers that forecast
// arbitrary trend windows.
func (s *Store) Forecaster() *analytics.Forecaster {
	return s.forecaster
}

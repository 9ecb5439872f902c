// Package analytics computes dashboard statistics over a snapshot of evaluation records.
// Every function is pure: results depend on the set of records, never on their order.
package analytics

import (
	"math"
	"sort"
	"time"

	types "github.com/yungbote/gradebridge-backend/internal/domain"
)

const (
	DefaultTopStudents     = 10
	DefaultWeakThreshold   = 5.0
	DefaultStrongThreshold = 7.0
	DefaultRecentLimit     = 50
)

// Grades are the fixed histogram buckets.
var Grades = []string{"A", "B", "C", "D", "F"}

// ScoreBands are half-open ranges; the last band also takes scores >= 10.
var ScoreBands = []string{"0-2", "2-4", "4-6", "6-8", "8-10"}

type Ranked[V int | float64] struct {
	Key   string `json:"key"`
	Value V      `json:"value"`
}

type CountAvg struct {
	Count    int     `json:"count"`
	AvgScore float64 `json:"avg_score"`
}

type Summary struct {
	Total          int     `json:"total"`
	AvgScore       float64 `json:"avg_score"`
	UniqueStudents int     `json:"unique_students"`
	UniqueTopics   int     `json:"unique_topics"`
}

type ClassStats struct {
	Min         float64 `json:"min_score"`
	Max         float64 `json:"max_score"`
	Mean        float64 `json:"mean"`
	Median      float64 `json:"median"`
	StdDev      float64 `json:"std_dev"`
	TotalScores int     `json:"total_scores"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// mean sums in ascending order so the result does not depend on record order.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := xs
	if !sort.Float64sAreSorted(xs) {
		sorted = append([]float64(nil), xs...)
		sort.Float64s(sorted)
	}
	sum := 0.0
	for _, x := range sorted {
		sum += x
	}
	return sum / float64(len(sorted))
}

func numericScores(rows []types.EvaluationRecord) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if s, ok := r.NumericScore(); ok {
			out = append(out, s)
		}
	}
	return out
}

// scoresBy groups numeric scores by key; keys whose records are all non-numeric are absent.
func scoresBy(rows []types.EvaluationRecord, key func(types.EvaluationRecord) string) map[string][]float64 {
	out := make(map[string][]float64)
	for _, r := range rows {
		if s, ok := r.NumericScore(); ok {
			k := key(r)
			out[k] = append(out[k], s)
		}
	}
	return out
}

func countBy(rows []types.EvaluationRecord, key func(types.EvaluationRecord) string) map[string]int {
	out := make(map[string]int)
	for _, r := range rows {
		out[key(r)]++
	}
	return out
}

func byTopic(r types.EvaluationRecord) string   { return r.Topic }
func byStudent(r types.EvaluationRecord) string { return r.StudentName }
func byGrade(r types.EvaluationRecord) string   { return r.NormalizedGrade() }

func byDate(r types.EvaluationRecord) string {
	return r.CreatedAt.UTC().Format(time.DateOnly)
}

func averages(groups map[string][]float64) map[string]float64 {
	out := make(map[string]float64, len(groups))
	for k, xs := range groups {
		out[k] = round2(mean(xs))
	}
	return out
}

func ranked[V int | float64](m map[string]V, desc bool) []Ranked[V] {
	out := make([]Ranked[V], 0, len(m))
	for k, v := range m {
		out = append(out, Ranked[V]{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			if desc {
				return out[i].Value > out[j].Value
			}
			return out[i].Value < out[j].Value
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func TotalEvaluations(rows []types.EvaluationRecord) int { return len(rows) }

// AverageScore is the mean numeric score rounded to two places, 0 when no score parses.
func AverageScore(rows []types.EvaluationRecord) float64 {
	return round2(mean(numericScores(rows)))
}

func GradeDistribution(rows []types.EvaluationRecord) map[string]int {
	out := make(map[string]int, len(Grades))
	for _, g := range Grades {
		out[g] = 0
	}
	for _, r := range rows {
		g := r.NormalizedGrade()
		if _, ok := out[g]; ok {
			out[g]++
		}
	}
	return out
}

func TopicPerformance(rows []types.EvaluationRecord) map[string]float64 {
	return averages(scoresBy(rows, byTopic))
}

// TopicDifficulty orders topics hardest first (lowest average).
func TopicDifficulty(rows []types.EvaluationRecord) []Ranked[float64] {
	return ranked(TopicPerformance(rows), false)
}

func StudentPerformance(rows []types.EvaluationRecord) []Ranked[float64] {
	return ranked(averages(scoresBy(rows, byStudent)), true)
}

func TopStudents(rows []types.EvaluationRecord, limit int) []Ranked[float64] {
	if limit <= 0 {
		limit = DefaultTopStudents
	}
	perf := StudentPerformance(rows)
	if len(perf) > limit {
		perf = perf[:limit]
	}
	return perf
}

func WeakStudents(rows []types.EvaluationRecord, threshold float64) []Ranked[float64] {
	out := make([]Ranked[float64], 0)
	for _, s := range StudentPerformance(rows) {
		if s.Value < threshold {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value < out[j].Value
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func StrongStudents(rows []types.EvaluationRecord, threshold float64) []Ranked[float64] {
	out := make([]Ranked[float64], 0)
	for _, s := range StudentPerformance(rows) {
		if s.Value >= threshold {
			out = append(out, s)
		}
	}
	return out
}

func EvaluationsByTopic(rows []types.EvaluationRecord) []Ranked[int] {
	return ranked(countBy(rows, byTopic), true)
}

func StudentEvaluationCount(rows []types.EvaluationRecord) []Ranked[int] {
	return ranked(countBy(rows, byStudent), true)
}

// AssignmentsPerStudent is the evaluation frequency per student, most active first.
func AssignmentsPerStudent(rows []types.EvaluationRecord) []Ranked[int] {
	return StudentEvaluationCount(rows)
}

// EvaluationsOverTime counts records per UTC calendar day, oldest first.
func EvaluationsOverTime(rows []types.EvaluationRecord) []Ranked[int] {
	counts := make(map[string]int)
	for _, r := range rows {
		if r.CreatedAt.IsZero() {
			continue
		}
		counts[byDate(r)]++
	}
	out := make([]Ranked[int], 0, len(counts))
	for k, v := range counts {
		out = append(out, Ranked[int]{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func SummaryOf(rows []types.EvaluationRecord) Summary {
	students := make(map[string]struct{})
	topics := make(map[string]struct{})
	for _, r := range rows {
		students[r.StudentName] = struct{}{}
		topics[r.Topic] = struct{}{}
	}
	return Summary{
		Total:          len(rows),
		AvgScore:       AverageScore(rows),
		UniqueStudents: len(students),
		UniqueTopics:   len(topics),
	}
}

func ScoreDistribution(rows []types.EvaluationRecord) map[string]int {
	out := make(map[string]int, len(ScoreBands))
	for _, b := range ScoreBands {
		out[b] = 0
	}
	for _, s := range numericScores(rows) {
		switch {
		case s < 2:
			out["0-2"]++
		case s < 4:
			out["2-4"]++
		case s < 6:
			out["4-6"]++
		case s < 8:
			out["6-8"]++
		default:
			out["8-10"]++
		}
	}
	return out
}

func countAvg(rows []types.EvaluationRecord, key func(types.EvaluationRecord) string, skip func(types.EvaluationRecord) bool) map[string]CountAvg {
	counts := make(map[string]int)
	scores := make(map[string][]float64)
	for _, r := range rows {
		if skip != nil && skip(r) {
			continue
		}
		k := key(r)
		counts[k]++
		if s, ok := r.NumericScore(); ok {
			scores[k] = append(scores[k], s)
		}
	}
	out := make(map[string]CountAvg, len(counts))
	for k, c := range counts {
		out[k] = CountAvg{Count: c, AvgScore: round2(mean(scores[k]))}
	}
	return out
}

func TopicEvaluationCount(rows []types.EvaluationRecord) map[string]CountAvg {
	return countAvg(rows, byTopic, nil)
}

// PerformanceByGrade keys on the normalized grade string without bucketing.
func PerformanceByGrade(rows []types.EvaluationRecord) map[string]CountAvg {
	return countAvg(rows, byGrade, nil)
}

func EvaluationStatsByDate(rows []types.EvaluationRecord) []DateStats {
	m := countAvg(rows, byDate, func(r types.EvaluationRecord) bool { return r.CreatedAt.IsZero() })
	out := make([]DateStats, 0, len(m))
	for k, v := range m {
		out = append(out, DateStats{Date: k, CountAvg: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

type DateStats struct {
	Date string `json:"date"`
	CountAvg
}

// ClassStatsOf returns nil when no record carries a numeric score.
func ClassStatsOf(rows []types.EvaluationRecord) *ClassStats {
	scores := numericScores(rows)
	n := len(scores)
	if n == 0 {
		return nil
	}
	sort.Float64s(scores)
	m := mean(scores)

	var median float64
	if n%2 == 1 {
		median = scores[n/2]
	} else {
		median = round2((scores[n/2-1] + scores[n/2]) / 2)
	}
	variance := 0.0
	for _, s := range scores {
		variance += (s - m) * (s - m)
	}
	variance /= float64(n)

	return &ClassStats{
		Min:         scores[0],
		Max:         scores[n-1],
		Mean:        round2(m),
		Median:      median,
		StdDev:      round2(math.Sqrt(variance)),
		TotalScores: n,
	}
}

// RecentEvaluations returns the newest limit records, newest first.
func RecentEvaluations(rows []types.EvaluationRecord, limit int) []types.EvaluationRecord {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	out := make([]types.EvaluationRecord, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Segments bundles the weak/strong split used by the segmentation view.
type Segments struct {
	Weak   []Ranked[float64] `json:"weak"`
	Strong []Ranked[float64] `json:"strong"`
}

func SegmentsOf(rows []types.EvaluationRecord, weak, strong float64) Segments {
	return Segments{Weak: WeakStudents(rows, weak), Strong: StrongStudents(rows, strong)}
}

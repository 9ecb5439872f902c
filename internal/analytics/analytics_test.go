package analytics

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smartystreets/goconvey/convey"

	types "github.com/yungbote/gradebridge-backend/internal/domain"
)

var day1 = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
var day2 = time.Date(2024, 3, 2, 14, 0, 0, 0, time.UTC)

func rec(topic, student, score, grade string, at time.Time) types.EvaluationRecord {
	return types.EvaluationRecord{
		ID:          uuid.New(),
		Topic:       topic,
		StudentName: student,
		Score:       score,
		Grade:       grade,
		CreatedAt:   at,
	}
}

func classFixture() []types.EvaluationRecord {
	return []types.EvaluationRecord{
		rec("Photosynthesis", "Alice Johnson", "8.5", "A", day1),
		rec("Photosynthesis", "Bob Smith", "7", " b ", day1),
		rec("DNA Replication", "Alice Johnson", "9", "a", day2),
		rec("Cell Division", "Charlie Brown", "6.3", "C", day2),
		rec("Cell Division", "Diana Prince", "not graded", "Pending", day2),
	}
}

func shuffled(rows []types.EvaluationRecord, seed int64) []types.EvaluationRecord {
	out := append([]types.EvaluationRecord(nil), rows...)
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func TestSummaryAndAverages(t *testing.T) {
	convey.Convey("Given five evaluations where one score is not numeric", t, func() {
		rows := classFixture()

		convey.Convey("The average excludes the non-numeric score but the total counts it", func() {
			convey.So(AverageScore(rows), convey.ShouldEqual, 7.7)
			convey.So(TotalEvaluations(rows), convey.ShouldEqual, 5)
			convey.So(SummaryOf(rows), convey.ShouldResemble, Summary{Total: 5, AvgScore: 7.7, UniqueStudents: 4, UniqueTopics: 3})
		})

		convey.Convey("The grade histogram normalizes case and ignores unknown grades", func() {
			convey.So(GradeDistribution(rows), convey.ShouldResemble, map[string]int{"A": 2, "B": 1, "C": 1, "D": 0, "F": 0})
		})

		convey.Convey("Performance by grade keeps unknown grades", func() {
			perf := PerformanceByGrade(rows)
			convey.So(perf["PENDING"], convey.ShouldResemble, CountAvg{Count: 1, AvgScore: 0})
			convey.So(perf["A"], convey.ShouldResemble, CountAvg{Count: 2, AvgScore: 8.75})
		})

		convey.Convey("Topic averages exclude non-numeric scores", func() {
			perf := TopicPerformance(rows)
			convey.So(perf["Photosynthesis"], convey.ShouldEqual, 7.75)
			convey.So(perf["Cell Division"], convey.ShouldEqual, 6.3)
			convey.So(TopicDifficulty(rows)[0], convey.ShouldResemble, Ranked[float64]{Key: "Cell Division", Value: 6.3})
			convey.So(TopicEvaluationCount(rows)["Cell Division"], convey.ShouldResemble, CountAvg{Count: 2, AvgScore: 6.3})
		})
	})
}

func TestStudentRankings(t *testing.T) {
	convey.Convey("Given per-student averages", t, func() {
		rows := classFixture()

		convey.Convey("Students are ranked best first", func() {
			perf := StudentPerformance(rows)
			convey.So(perf, convey.ShouldResemble, []Ranked[float64]{
				{Key: "Alice Johnson", Value: 8.75},
				{Key: "Bob Smith", Value: 7},
				{Key: "Charlie Brown", Value: 6.3},
			})
			convey.So(TopStudents(rows, 2), convey.ShouldHaveLength, 2)
			convey.So(TopStudents(rows, 0), convey.ShouldHaveLength, 3)
		})

		convey.Convey("Segmentation splits on the thresholds", func() {
			convey.So(WeakStudents(rows, 7), convey.ShouldResemble, []Ranked[float64]{{Key: "Charlie Brown", Value: 6.3}})
			convey.So(StrongStudents(rows, 7), convey.ShouldResemble, []Ranked[float64]{
				{Key: "Alice Johnson", Value: 8.75},
				{Key: "Bob Smith", Value: 7},
			})
			seg := SegmentsOf(rows, DefaultWeakThreshold, DefaultStrongThreshold)
			convey.So(seg.Weak, convey.ShouldBeEmpty)
			convey.So(seg.Strong, convey.ShouldHaveLength, 2)
		})

		convey.Convey("Counts tie-break by key", func() {
			convey.So(EvaluationsByTopic(rows), convey.ShouldResemble, []Ranked[int]{
				{Key: "Cell Division", Value: 2},
				{Key: "Photosynthesis", Value: 2},
				{Key: "DNA Replication", Value: 1},
			})
			convey.So(AssignmentsPerStudent(rows)[0], convey.ShouldResemble, Ranked[int]{Key: "Alice Johnson", Value: 2})
			convey.So(StudentEvaluationCount(rows), convey.ShouldHaveLength, 4)
		})
	})
}

func TestDistributionsAndTimeline(t *testing.T) {
	convey.Convey("Given scores across bands and two days", t, func() {
		rows := append(classFixture(),
			rec("Genetics", "Eve Wilson", "1.99", "F", day1),
			rec("Genetics", "Frank Miller", "10", "A", day1),
			rec("Genetics", "Grace Lee", "4", "D", time.Time{}),
		)

		convey.Convey("Score bands are half-open and the last band takes 10", func() {
			convey.So(ScoreDistribution(rows), convey.ShouldResemble, map[string]int{"0-2": 1, "2-4": 0, "4-6": 1, "6-8": 2, "8-10": 3})
		})

		convey.Convey("Timeline buckets by UTC day and skips undated records", func() {
			convey.So(EvaluationsOverTime(rows), convey.ShouldResemble, []Ranked[int]{
				{Key: "2024-03-01", Value: 4},
				{Key: "2024-03-02", Value: 3},
			})
			stats := EvaluationStatsByDate(rows)
			convey.So(stats, convey.ShouldHaveLength, 2)
			convey.So(stats[1].Date, convey.ShouldEqual, "2024-03-02")
			convey.So(stats[1].Count, convey.ShouldEqual, 3)
			convey.So(stats[1].AvgScore, convey.ShouldEqual, 7.65)
		})

		convey.Convey("Recent evaluations are newest first and capped", func() {
			recent := RecentEvaluations(rows, 2)
			convey.So(recent, convey.ShouldHaveLength, 2)
			convey.So(recent[0].CreatedAt.Equal(day2), convey.ShouldBeTrue)
		})
	})
}

func TestClassStats(t *testing.T) {
	convey.Convey("Given no numeric scores", t, func() {
		convey.So(ClassStatsOf(nil), convey.ShouldBeNil)
		convey.So(ClassStatsOf([]types.EvaluationRecord{rec("t", "s", "", "A", day1)}), convey.ShouldBeNil)
	})

	convey.Convey("Given an even number of scores", t, func() {
		stats := ClassStatsOf(classFixture())
		convey.So(stats, convey.ShouldNotBeNil)
		convey.So(stats.Min, convey.ShouldEqual, 6.3)
		convey.So(stats.Max, convey.ShouldEqual, 9.0)
		convey.So(stats.Mean, convey.ShouldEqual, 7.7)
		convey.So(stats.Median, convey.ShouldEqual, 7.75)
		convey.So(stats.StdDev, convey.ShouldEqual, 1.09)
		convey.So(stats.TotalScores, convey.ShouldEqual, 4)
	})
}

func TestOrderIndependence(t *testing.T) {
	convey.Convey("Given the same records in any order", t, func() {
		rows := classFixture()
		for seed := int64(1); seed <= 5; seed++ {
			mixed := shuffled(rows, seed)
			convey.So(AverageScore(mixed), convey.ShouldEqual, AverageScore(rows))
			convey.So(GradeDistribution(mixed), convey.ShouldResemble, GradeDistribution(rows))
			convey.So(StudentPerformance(mixed), convey.ShouldResemble, StudentPerformance(rows))
			convey.So(EvaluationsByTopic(mixed), convey.ShouldResemble, EvaluationsByTopic(rows))
			convey.So(ClassStatsOf(mixed), convey.ShouldResemble, ClassStatsOf(rows))
			convey.So(EvaluationStatsByDate(mixed), convey.ShouldResemble, EvaluationStatsByDate(rows))
		}

		convey.Convey("Averages agree even when summation order would change the rounding", func() {
			forward := []types.EvaluationRecord{
				rec("T", "Ann", "8.9", "B", day1),
				rec("T", "Ann", "8.6", "B", day1),
				rec("T", "Ann", "0.1", "F", day1),
				rec("T", "Ann", "9.7", "A", day1),
			}
			backward := []types.EvaluationRecord{forward[3], forward[1], forward[2], forward[0]}

			convey.So(AverageScore(forward), convey.ShouldEqual, 6.83)
			convey.So(AverageScore(backward), convey.ShouldEqual, 6.83)
			convey.So(TopicPerformance(backward), convey.ShouldResemble, TopicPerformance(forward))
			convey.So(StudentPerformance(backward), convey.ShouldResemble, StudentPerformance(forward))
			convey.So(ClassStatsOf(backward).Mean, convey.ShouldEqual, AverageScore(backward))
		})
	})
}

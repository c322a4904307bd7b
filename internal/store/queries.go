package store

const tableJobHistory = "job_history"

var historyColumns = []string{
	"job_id",
	"name",
	"worker",
	"started_at",
	"finished_at",
	"duration_us",
	"error",
	"panicked",
}

// Statistics queries
const (
	queryHistorySummary = `
		SELECT worker,
		       COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE error <> '') AS failed,
		       COALESCE(AVG(duration_us), 0) AS avg_duration_us
		FROM job_history
		GROUP BY worker
		ORDER BY worker`

	queryDeleteHistory = `DELETE FROM job_history`
)

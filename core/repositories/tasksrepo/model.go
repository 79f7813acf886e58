package tasksrepo

import (
	"fmt"
	"strings"
	"time"
)

// Day is the weekday column a task is planned under.
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
	Anytime   Day = "Anytime"
)

// Days lists every Day in planner column order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday, Anytime}

// ParseDay accepts a day label in any letter case.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	for _, d := range Days {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("invalid day %q", s)
}

// Category is the recurrence bucket a task belongs to.
type Category string

const (
	CategoryDay     Category = "day"
	CategoryWeek    Category = "week"
	CategoryMonth   Category = "month"
	CategoryYear    Category = "year"
	CategoryAnytime Category = "anytime"
)

var categoryAliases = map[string]Category{
	"day":     CategoryDay,
	"daily":   CategoryDay,
	"week":    CategoryWeek,
	"weekly":  CategoryWeek,
	"month":   CategoryMonth,
	"monthly": CategoryMonth,
	"year":    CategoryYear,
	"yearly":  CategoryYear,
	"anytime": CategoryAnytime,
}

// ParseCategory accepts the canonical names and the daily/weekly/monthly/
// yearly aliases. An empty string yields CategoryDay.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CategoryDay, nil
	}
	c, ok := categoryAliases[s]
	if !ok {
		return "", fmt.Errorf("invalid category %q", s)
	}
	return c, nil
}

// Task is one recurring practice item owned by a user.
type Task struct {
	TaskID      string    `db:"task_id" bson:"_id"`
	UserID      string    `db:"user_id" bson:"user_id"`
	Title       string    `db:"title" bson:"title"`
	Day         Day       `db:"day" bson:"day"`
	Category    Category  `db:"category" bson:"category"`
	IsCompleted bool      `db:"is_completed" bson:"is_completed"`
	Date        time.Time `db:"date" bson:"date"`
	CreatedAt   time.Time `db:"created_at" bson:"created_at"`
}

// CreateTask carries the caller supplied fields for a new task. A nil Date
// defaults to the creation time.
type CreateTask struct {
	UserID   string
	Title    string
	Day      Day
	Category Category
	Date     *time.Time
}

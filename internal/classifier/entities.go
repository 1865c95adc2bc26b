package classifier

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// weekdayOrder mirrors Python's Monday=0 convention used by original_source,
// rather than Go's time.Weekday (Sunday=0), so "next occurrence" arithmetic
// matches the spec's day-name rule exactly.
var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// extractEntities runs every entity rule unconditionally (spec §4.4: "runs
// unconditionally after intent selection... first-match-wins per entity
// type") and, for create_* intents, also derives a title.
func extractEntities(message string, intent Intent, now time.Time) map[string]string {
	entities := map[string]string{}
	lower := strings.ToLower(message)

	if loc := reRelativeDay.FindStringIndex(lower); loc != nil {
		entities["due_date"] = parseRelativeDay(lower[loc[0]:loc[1]], now)
	} else if loc := reWeekday.FindStringIndex(lower); loc != nil {
		entities["due_date"] = parseWeekday(lower[loc[0]:loc[1]], now)
	} else if m := reSlashDate.FindStringSubmatch(lower); m != nil {
		entities["due_date"] = parseMonthDayYear(m)
	} else if m := reDashDate.FindStringSubmatch(lower); m != nil {
		entities["due_date"] = parseMonthDayYear(m)
	} else if m := reRelativeN.FindStringSubmatch(lower); m != nil {
		entities["due_date"] = parseRelativeN(m, now)
	} else if m := reRelativePeriod.FindStringSubmatch(lower); m != nil {
		entities["due_date"] = parseRelativePeriod(m, now)
	}

	for _, rule := range lifeAreaPatterns {
		if rule.re.MatchString(lower) {
			entities["life_area"] = rule.name
			break
		}
	}

	switch {
	case rePriorityHigh.MatchString(lower), rePriorityHigh2.MatchString(lower):
		entities["priority"] = "high"
	case rePriorityLow.MatchString(lower):
		entities["priority"] = "low"
	case rePriorityMedium.MatchString(lower):
		entities["priority"] = "medium"
	}

	if m := reDuration.FindStringSubmatch(lower); m != nil {
		entities["duration"] = m[1] + " " + strings.ToLower(m[2])
	}

	switch intent {
	case IntentCreateGoal, IntentCreateTask, IntentCreateProject:
		if title := extractTitle(message); title != "" {
			entities["title"] = title
		}
	}

	return entities
}

// extractTitle strips intent-keyword prefixes and leading/trailing
// punctuation, rejecting anything shorter than 3 characters (spec §4.4
// entity table, "title" row).
func extractTitle(message string) string {
	cleaned := message
	for _, re := range titleStripPatterns {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = leadingTrailingPunct.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	if len(cleaned) < 3 {
		return ""
	}
	return cleaned
}

func parseRelativeDay(word string, now time.Time) string {
	switch word {
	case "today":
		return now.Format("2006-01-02")
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format("2006-01-02")
	}
	return word
}

func parseWeekday(dayName string, now time.Time) string {
	targetIdx := -1
	for i, d := range weekdayOrder {
		if strings.EqualFold(d.String(), dayName) {
			targetIdx = i
			break
		}
	}
	if targetIdx == -1 {
		return dayName
	}
	currentIdx := 0
	for i, d := range weekdayOrder {
		if d == now.Weekday() {
			currentIdx = i
			break
		}
	}
	daysAhead := targetIdx - currentIdx
	if daysAhead <= 0 {
		daysAhead += 7
	}
	return now.AddDate(0, 0, daysAhead).Format("2006-01-02")
}

func parseMonthDayYear(m []string) string {
	month, errM := strconv.Atoi(m[1])
	day, errD := strconv.Atoi(m[2])
	year, errY := strconv.Atoi(m[3])
	if errM != nil || errD != nil || errY != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return m[0]
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func parseRelativeN(m []string, now time.Time) string {
	amount, err := strconv.Atoi(m[1])
	if err != nil {
		return m[0]
	}
	unit := strings.ToLower(m[2])
	switch {
	case strings.HasPrefix(unit, "day"):
		return now.AddDate(0, 0, amount).Format("2006-01-02")
	case strings.HasPrefix(unit, "week"):
		return now.AddDate(0, 0, amount*7).Format("2006-01-02")
	case strings.HasPrefix(unit, "month"):
		return now.AddDate(0, 0, amount*30).Format("2006-01-02")
	}
	return m[0]
}

func parseRelativePeriod(m []string, now time.Time) string {
	modifier := strings.ToLower(m[1])
	period := strings.ToLower(m[2])

	switch period {
	case "week":
		if modifier == "next" {
			return now.AddDate(0, 0, 7).Format("2006-01-02")
		}
		daysToSunday := 6 - int(now.Weekday()-time.Monday+7)%7
		return now.AddDate(0, 0, daysToSunday).Format("2006-01-02")
	case "month":
		if modifier == "next" {
			if now.Month() == time.December {
				return time.Date(now.Year()+1, time.January, 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
			}
			return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
		}
		return time.Date(now.Year(), now.Month(), 28, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
	}
	return m[0]
}

package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/kosku-next/internal/models"
)

// RuleSetMatches 判断促销规则集是否命中上下文。
// 规则之间为 OR，规则内各条件为 AND；空规则集无条件命中（返回 nil 规则）。
// 命中时返回首个命中的规则，其 max_discount_idr 与组件开关约束后续折扣计算。
func RuleSetMatches(rules []models.PromotionRule, ctx DiscountContext) (bool, *models.PromotionRule) {
	if len(rules) == 0 {
		return true, nil
	}
	for i := range rules {
		if ruleMatches(rules[i], ctx) {
			return true, &rules[i]
		}
	}
	return false, nil
}

func ruleMatches(rule models.PromotionRule, ctx DiscountContext) bool {
	if rule.MinSpendIDR.Decimal.IsPositive() &&
		ctx.ChargeableAmount().Decimal.Cmp(rule.MinSpendIDR.Decimal) < 0 {
		return false
	}

	if len(rule.BillingPeriods) > 0 && !rule.BillingPeriods.Contains(ctx.BillingPeriod) {
		return false
	}

	if rule.DateFrom != nil && ctx.Date.Before(*rule.DateFrom) {
		return false
	}
	if rule.DateUntil != nil && ctx.Date.After(*rule.DateUntil) {
		return false
	}

	if len(rule.DaysOfWeek) > 0 && !rule.DaysOfWeek.Contains(isoWeekday(ctx.Date)) {
		return false
	}

	if !timeWindowMatches(rule.TimeStart, rule.TimeEnd, ctx.Date) {
		return false
	}

	if rule.Channel != "" && rule.Channel != ctx.Channel {
		return false
	}

	if rule.FirstNPeriods != nil && ctx.PeriodIndex > *rule.FirstNPeriods {
		return false
	}

	if len(rule.AllowedRoleNames) > 0 || len(rule.AllowedUserIDs) > 0 {
		if !roleAllowed(rule.AllowedRoleNames, ctx.UserRoles) && !rule.AllowedUserIDs.Contains(ctx.UserID) {
			return false
		}
	}

	return true
}

// isoWeekday 返回 ISO-8601 周内日（1=周一 .. 7=周日）。
func isoWeekday(t time.Time) int {
	weekday := int(t.Weekday())
	if weekday == 0 {
		return 7
	}
	return weekday
}

// timeWindowMatches 判断时刻是否落在 [time_start, time_end] 闭区间内。
// 任一端为空表示不限；跨午夜窗口（end < start）按不命中处理。
func timeWindowMatches(start, end string, at time.Time) bool {
	startMinutes, hasStart := parseClock(start)
	endMinutes, hasEnd := parseClock(end)
	if !hasStart && !hasEnd {
		return true
	}

	current := at.Hour()*60 + at.Minute()
	if hasStart && hasEnd && endMinutes < startMinutes {
		return false
	}
	if hasStart && current < startMinutes {
		return false
	}
	if hasEnd && current > endMinutes {
		return false
	}
	return true
}

// parseClock 解析 HH:MM，返回自零点起的分钟数。
func parseClock(value string) (int, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	parts := strings.SplitN(trimmed, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

func roleAllowed(allowed models.StringList, roles []string) bool {
	for _, role := range roles {
		if allowed.Contains(role) {
			return true
		}
	}
	return false
}

package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xife12/membercore/internal/models"
	"github.com/xife12/membercore/internal/utils"
	"github.com/xife12/membercore/pkg/logger"
	"gorm.io/gorm"
)

// reminderRepeatDays guards against mailing the same membership every day
// while it sits in the notice window.
const reminderRepeatDays = 7

// ReminderService scans for active memberships that entered the 30-day
// notice window and queues one renewal reminder per member.
type ReminderService struct {
	db             *gorm.DB
	queue          TaskQueue
	cronScheduler  *cron.Cron
	currentEntryID cron.EntryID
}

func NewReminderService(db *gorm.DB, queue TaskQueue) *ReminderService {
	return &ReminderService{db: db, queue: queue}
}

func (s *ReminderService) StartScheduler() {
	s.cronScheduler = cron.New()
	s.updateSchedule()
	s.cronScheduler.Start()
	logger.Info().Msg("[Reminder] scheduler started")
}

func (s *ReminderService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

func (s *ReminderService) updateSchedule() {
	if s.currentEntryID != 0 {
		s.cronScheduler.Remove(s.currentEntryID)
	}

	reminderTime := s.getConfigValue("reminder_time", "08:00")
	parts := strings.SplitN(reminderTime, ":", 2)
	hour, minute := "8", "0"
	if len(parts) == 2 {
		hour = strings.TrimLeft(parts[0], "0")
		minute = strings.TrimLeft(parts[1], "0")
		if hour == "" {
			hour = "0"
		}
		if minute == "" {
			minute = "0"
		}
	}

	cronExpr := fmt.Sprintf("%s %s * * *", minute, hour)
	entryID, err := s.cronScheduler.AddFunc(cronExpr, s.RunOnce)
	if err != nil {
		logger.Error().Err(err).Str("cron", cronExpr).Msg("[Reminder] failed to schedule job")
		return
	}
	s.currentEntryID = entryID
	logger.Info().Str("time", reminderTime).Str("cron", cronExpr).Msg("[Reminder] daily job scheduled")
}

// RunOnce performs a single reminder sweep. Exposed for manual triggering.
func (s *ReminderService) RunOnce() {
	if s.getConfigValue("reminder_enabled", "true") != "true" {
		return
	}

	today := utils.Today()
	cutoff := utils.AddDays(today, NoticePeriodDays)

	var candidates []models.Membership
	err := s.db.Preload("ContractType").
		Where("status IN ?", []models.MembershipStatus{models.StatusPlanned, models.StatusActive}).
		Where("end_date >= ? AND end_date <= ?", today, cutoff).
		Find(&candidates).Error
	if err != nil {
		logger.Error().Err(err).Msg("[Reminder] candidate query failed")
		return
	}

	queued := 0
	for i := range candidates {
		m := &candidates[i]
		if m.EffectiveStatus(today) != models.StatusActive {
			continue
		}
		term, err := RemainingDaysTier(m, today)
		if err != nil || term.Tier != TierRed {
			continue
		}
		if s.recentlyReminded(m.ID, today) {
			continue
		}

		var member models.Member
		if err := s.db.First(&member, m.MemberID).Error; err != nil {
			continue
		}
		if !member.IsActive || member.Email == "" {
			continue
		}

		contractName := ""
		if m.ContractType != nil {
			contractName = m.ContractType.Name
		}

		task := &ReminderTask{
			MemberID:     member.ID,
			MembershipID: m.ID,
			MemberName:   member.FullName(),
			MemberNumber: member.MemberNumber,
			Email:        member.Email,
			ContractName: contractName,
			EndDate:      utils.FormatDate(m.EndDate),
			DaysLeft:     term.Days,
		}
		if err := s.queue.Enqueue(task); err != nil {
			logger.Error().Err(err).Uint("membership_id", m.ID).Msg("[Reminder] enqueue failed")
			continue
		}

		s.markReminded(m, &member, term.Days)
		queued++
	}

	if queued > 0 {
		logger.Info().Int("count", queued).Msg("[Reminder] reminders queued")
	}
}

// recentlyReminded checks the audit trail for a reminder sent within the
// repeat window.
func (s *ReminderService) recentlyReminded(membershipID uint, today time.Time) bool {
	since := utils.AddDays(today, -reminderRepeatDays)
	var count int64
	s.db.Model(&models.SystemLog{}).
		Where("module = ? AND action = ?", "Reminder", reminderAction(membershipID)).
		Where("created_at >= ?", since).
		Count(&count)
	return count > 0
}

func (s *ReminderService) markReminded(m *models.Membership, member *models.Member, daysLeft int) {
	LogInfo("Reminder", reminderAction(m.ID),
		fmt.Sprintf("renewal reminder queued for %s (%d days left)", member.MemberNumber, daysLeft),
		nil, "", "", map[string]interface{}{
			"member_id":     member.ID,
			"membership_id": m.ID,
			"days_left":     daysLeft,
		})
}

func reminderAction(membershipID uint) string {
	return fmt.Sprintf("membership:%d", membershipID)
}

func (s *ReminderService) getConfigValue(key, fallback string) string {
	var cfg models.SystemConfig
	if err := s.db.Where("key = ?", key).First(&cfg).Error; err != nil {
		return fallback
	}
	if cfg.Value == "" {
		return fallback
	}
	return cfg.Value
}

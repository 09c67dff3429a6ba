package leave_test

import (
	"context"
	"time"

	"github.com/frahmantamala/leave-request/internal"
	"github.com/frahmantamala/leave-request/internal/leave"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Service", func() {
	var (
		ctx        context.Context
		repo       *memoryRepository
		notifier   *fakeNotifier
		cal        *fakeCalendar
		service    *leave.Service
		recipients []string
		jane       leave.SubmitLeaveDTO
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMemoryRepository()
		notifier = &fakeNotifier{}
		cal = &fakeCalendar{}
		recipients = []string{"hr@x.com"}
		service = leave.NewService(repo, notifier, cal, leave.Config{Recipients: recipients, Location: time.UTC}, testLogger)

		jane = leave.SubmitLeaveDTO{
			Name:        "Jane Doe",
			Email:       "jane@x.com",
			LeaveDays:   "3",
			LeavePeriod: "2024-05-01..2024-05-03",
			Reason:      "vacation",
		}
	})

	Describe("Submit", func() {
		It("should store a pending application with the submitted values", func() {
			result, err := service.Submit(ctx, jane)
			Expect(err).NotTo(HaveOccurred())

			app := result.Application
			Expect(app.ID).To(BeNumerically(">", 0))
			Expect(app.Status).To(Equal(leave.StatusPending))

			stored, err := service.Get(ctx, app.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Name).To(Equal("Jane Doe"))
			Expect(stored.Email).To(Equal("jane@x.com"))
			Expect(stored.LeaveDays).To(Equal("3"))
			Expect(stored.LeavePeriod).To(Equal("2024-05-01..2024-05-03"))
			Expect(stored.Reason).To(Equal("vacation"))
			Expect(stored.Status).To(Equal(leave.StatusPending))

			again, err := service.Get(ctx, app.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(stored))
		})

		It("should schedule one email to the configured recipients", func() {
			result, err := service.Submit(ctx, jane)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.NotificationQueued).To(BeTrue())

			sent := notifier.sent()
			Expect(sent).To(HaveLen(1))
			Expect(sent[0].To).To(Equal(recipients))
			Expect(sent[0].Subject).To(ContainSubstring("Jane Doe"))
			Expect(sent[0].Text).To(ContainSubstring("Jane Doe"))
			Expect(sent[0].Text).To(ContainSubstring("2024-05-01..2024-05-03"))
		})

		It("should create one calendar event spanning the leave period", func() {
			result, err := service.Submit(ctx, jane)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Calendar).To(Equal(leave.CalendarSynced))
			Expect(result.CalendarEventID).To(Equal("evt-1"))
			Expect(result.PartialSuccess()).To(BeFalse())

			calls := cal.recorded()
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].Summary).To(ContainSubstring("Jane Doe"))
			Expect(calls[0].Start).To(Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
			Expect(calls[0].End).To(Equal(time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)))
		})

		It("should store trimmed values", func() {
			jane.Name = "  Jane Doe  "
			jane.Email = " jane@x.com "

			result, err := service.Submit(ctx, jane)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Application.Name).To(Equal("Jane Doe"))
			Expect(result.Application.Email).To(Equal("jane@x.com"))
		})

		Context("when a required field is missing", func() {
			It("should perform no side effects", func() {
				jane.Name = ""

				result, err := service.Submit(ctx, jane)
				Expect(result).To(BeNil())
				Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())

				appErr, _ := internal.IsAppError(err)
				Expect(appErr.FieldErrors()).To(HaveKey("name"))

				Expect(repo.count()).To(BeZero())
				Expect(notifier.sent()).To(BeEmpty())
				Expect(cal.recorded()).To(BeEmpty())
			})
		})

		Context("when the store fails", func() {
			It("should return a storage error and skip the side effects", func() {
				repo.createErr = errBoom

				_, err := service.Submit(ctx, jane)
				Expect(internal.IsType(err, internal.ErrorTypeStorage)).To(BeTrue())
				Expect(notifier.sent()).To(BeEmpty())
				Expect(cal.recorded()).To(BeEmpty())
			})
		})

		Context("when the notification cannot be scheduled", func() {
			It("should still succeed", func() {
				notifier.err = internal.NewNotificationError("mail queue full", internal.ErrCodeQueueFull)

				result, err := service.Submit(ctx, jane)
				Expect(err).NotTo(HaveOccurred())
				Expect(result.NotificationQueued).To(BeFalse())
				Expect(result.Calendar).To(Equal(leave.CalendarSynced))
				Expect(repo.count()).To(Equal(1))
			})
		})

		Context("when the calendar call fails", func() {
			It("should report partial success and leave the row untouched", func() {
				cal.err = internal.NewCalendarError("failed to create calendar event", internal.ErrCodeCalendarFailed)

				result, err := service.Submit(ctx, jane)
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Calendar).To(Equal(leave.CalendarFailed))
				Expect(result.PartialSuccess()).To(BeTrue())
				Expect(result.CalendarMessage).NotTo(BeEmpty())

				stored, err := service.Get(ctx, result.Application.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(stored).To(Equal(result.Application))
				Expect(notifier.sent()).To(HaveLen(1))
			})
		})

		Context("when the period has no readable dates", func() {
			It("should skip the calendar", func() {
				jane.LeavePeriod = "first week of May"

				result, err := service.Submit(ctx, jane)
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Calendar).To(Equal(leave.CalendarSkipped))
				Expect(result.PartialSuccess()).To(BeTrue())
				Expect(cal.recorded()).To(BeEmpty())
				Expect(repo.count()).To(Equal(1))
			})
		})

		Context("when calendar sync is disabled", func() {
			It("should not report a partial success", func() {
				service = leave.NewService(repo, notifier, nil, leave.Config{Recipients: recipients}, testLogger)

				result, err := service.Submit(ctx, jane)
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Calendar).To(Equal(leave.CalendarDisabled))
				Expect(result.PartialSuccess()).To(BeFalse())
			})
		})
	})

	Describe("Get", func() {
		It("should return ErrLeaveNotFound for an unknown id", func() {
			_, err := service.Get(ctx, 42)
			Expect(err).To(Equal(internal.ErrLeaveNotFound))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for i := 0; i < 3; i++ {
				_, err := service.Submit(ctx, jane)
				Expect(err).NotTo(HaveOccurred())
			}
			_, err := service.Approve(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return newest first with the default page size", func() {
			resp, err := service.List(ctx, leave.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Limit).To(Equal(20))
			Expect(resp.Applications).To(HaveLen(3))
			Expect(resp.Applications[0].ID).To(Equal(int64(3)))
		})

		It("should filter by status", func() {
			resp, err := service.List(ctx, leave.ListFilter{Status: leave.StatusPending})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Applications).To(HaveLen(2))
		})

		It("should reject an unknown status", func() {
			_, err := service.List(ctx, leave.ListFilter{Status: "archived"})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("should clamp an oversized limit", func() {
			resp, err := service.List(ctx, leave.ListFilter{Limit: 1000, Offset: -5})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Limit).To(Equal(20))
			Expect(resp.Offset).To(BeZero())
		})
	})

	Describe("Approve and Reject", func() {
		var id int64

		BeforeEach(func() {
			result, err := service.Submit(ctx, jane)
			Expect(err).NotTo(HaveOccurred())
			id = result.Application.ID
		})

		It("should approve a pending application and notify the applicant", func() {
			app, err := service.Approve(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(app.Status).To(Equal(leave.StatusApproved))

			stored, err := service.Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(leave.StatusApproved))

			sent := notifier.sent()
			Expect(sent).To(HaveLen(2))
			Expect(sent[1].To).To(Equal([]string{"jane@x.com"}))
			Expect(sent[1].Subject).To(ContainSubstring("approved"))
		})

		It("should reject a pending application", func() {
			app, err := service.Reject(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(app.Status).To(Equal(leave.StatusRejected))
		})

		It("should refuse a second decision", func() {
			_, err := service.Approve(ctx, id)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Reject(ctx, id)
			Expect(err).To(Equal(internal.ErrLeaveAlreadyDealt))

			stored, err := service.Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(leave.StatusApproved))
			Expect(notifier.sent()).To(HaveLen(2))
		})

		It("should return ErrLeaveNotFound for an unknown id", func() {
			_, err := service.Approve(ctx, 999)
			Expect(err).To(Equal(internal.ErrLeaveNotFound))
		})
	})
})

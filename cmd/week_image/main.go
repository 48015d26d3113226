package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/google/uuid"
)

const (
	teacherID = 1
	studentID = 2
	otherID   = 3
)

func main() {
	out := flag.String("o", "week.png", "куда сохранить картинку")
	self := flag.Bool("self", false, "рисовать собственное расписание учителя")
	flag.Parse()

	now := time.Now()
	policy := service.DefaultPolicy()
	policy.Location = time.Local
	start := service.WeekStart(now, time.Local, 0)

	bookings := []*model.Booking{
		sample(studentID, teacherID, start, "C", "Дроби"),
		sample(otherID, teacherID, start, "K", "Степени"),
		sample(studentID, teacherID, start.AddDate(0, 0, 2), "A", ""),
		sample(otherID, teacherID, start.AddDate(0, 0, 4), "N", "Проценты"),
	}
	// утро вторника заблокировано учителем
	morning, _ := timegrid.Aggregate(timegrid.Morning)
	for _, code := range morning.Codes() {
		bookings = append(bookings, sample(teacherID, teacherID, start.AddDate(0, 0, 1), code, ""))
	}

	viewer := int64(studentID)
	if *self {
		viewer = teacherID
	}

	week, err := service.BuildWeek(bookings, service.WeekQuery{
		StudentID: viewer,
		TeacherID: teacherID,
		Now:       now,
	}, policy)
	if err != nil {
		fmt.Printf("Ошибка расчёта недели: %v\n", err)
		os.Exit(1)
	}

	names := map[int64]string{teacherID: "Анна", studentID: "Борис", otherID: "Карл"}
	imageData, err := common.GenerateWeekImage(week, now, time.Local, names)
	if err != nil {
		fmt.Printf("Ошибка генерации изображения: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, imageData, 0644); err != nil {
		fmt.Printf("Ошибка сохранения файла: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Изображение успешно сохранено в %s\n", *out)
	fmt.Printf("📅 Неделя с %s, занятий: %d\n", start.Format("02.01.2006"), len(bookings))
}

func sample(student, teacher int64, date time.Time, slot timegrid.Code, topic string) *model.Booking {
	return &model.Booking{
		ID:        uuid.New(),
		StudentID: student,
		TeacherID: teacher,
		Date:      date,
		Slot:      slot,
		Location:  model.LocationOnsite,
		Topic:     topic,
	}
}

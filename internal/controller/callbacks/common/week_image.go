package common

import (
	"bytes"
	"image/color"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontStyle определяет стиль шрифта
type FontStyle string

const (
	FontStyleDefault FontStyle = "" // Regular
	FontStyleBold    FontStyle = "bold"
)

// Константы размеров и отступов
const (
	imageWidth       = 1200
	imageHeight      = 980
	headerHeight     = 110
	leftLabelsWidth  = 130
	legendHeight     = 50
	dayPaddingX      = 6
	slotPaddingY     = 2.0
	slotBorderRadius = 6.0
	shadowOffset     = 2.0
	maxLabelRunes    = 16
)

// Константы шрифтов
const (
	titleFontSize      = 26.0
	dayFontSize        = 24.0
	slotLabelFontSize  = 15.0
	slotTextFontSize   = 14.0
	legendItemFontSize = 14.0
)

// Цветовая схема
var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	slotLabelColor   = color.RGBA{110, 115, 120, 200}
	todayBgColor     = color.NRGBA{255, 99, 71, 70}
	evenDayColor     = color.NRGBA{240, 240, 240, 255}
	oddDayColor      = color.NRGBA{228, 228, 228, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}

	slotFreeColor        = color.RGBA{133, 193, 85, 220}
	slotBookedColor      = color.RGBA{255, 182, 193, 255} // Светло-розовый для занятий
	slotBlockedColor     = color.RGBA{158, 158, 158, 200}
	slotUnavailableColor = color.RGBA{210, 210, 210, 160}
	slotTextColor        = color.RGBA{20, 24, 28, 230}
	slotBookedTextColor  = color.RGBA{120, 40, 50, 255}
	slotShadowColor      = color.RGBA{0, 0, 0, 20}

	legendItemColor = color.RGBA{70, 74, 78, 220}
)

// slotState как слот выглядит на картинке
type slotState int

const (
	slotUnavailable slotState = iota
	slotFree
	slotBooked
	slotBlocked
)

var (
	fontsMu     sync.Mutex
	cachedFonts = make(map[FontStyle]*opentype.Font)
)

// loadFont загружает шрифт указанного стиля или использует basicfont как fallback
func loadFont(dc *gg.Context, size float64, style ...FontStyle) {
	fontStyle := FontStyleDefault
	if len(style) > 0 {
		fontStyle = style[0]
	}

	parsed, err := parsedFont(fontStyle)
	if err != nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}
	dc.SetFontFace(face)
}

func parsedFont(style FontStyle) (*opentype.Font, error) {
	fontsMu.Lock()
	defer fontsMu.Unlock()

	if f, ok := cachedFonts[style]; ok {
		return f, nil
	}

	data := goregular.TTF
	if style == FontStyleBold {
		data = gobold.TTF
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	cachedFonts[style] = f
	return f, nil
}

// GenerateWeekImage рисует неделю Пн-Пт: 16 слотов на день.
// names - userID -> имя для подписи занятых слотов
func GenerateWeekImage(week *service.Week, now time.Time, loc *time.Location, names map[int64]string) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}
	today := timegrid.DateOf(now, loc)

	dc := createCanvas()
	days := len(week.Days)
	if days == 0 {
		days = service.DaysInWeek
	}
	dayWidth := (imageWidth - leftLabelsWidth) / days
	gridHeight := imageHeight - headerHeight - legendHeight
	cellHeight := float64(gridHeight) / float64(len(timegrid.Slots()))

	drawHeader(dc, week)
	drawSlotLabels(dc, cellHeight)
	for i, day := range week.Days {
		x := float64(leftLabelsWidth + i*dayWidth)
		isToday := day.Date.Equal(today)
		drawDayBackground(dc, x, dayWidth, gridHeight, i, isToday)
		drawDayHeader(dc, day.Date, x, dayWidth)
		for j, slot := range day.Slots {
			y := float64(headerHeight) + float64(j)*cellHeight
			drawSlot(dc, week, slot, x, y, dayWidth, cellHeight, names)
		}
		if isToday {
			drawCurrentTimeLine(dc, now.In(loc), x, dayWidth, cellHeight)
		}
	}
	drawLegend(dc, week.SelfMode)

	return encodeImage(dc)
}

// createCanvas создает новый контекст рисования с фоном
func createCanvas() *gg.Context {
	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	return dc
}

// drawHeader рисует заголовок с названием месяца
func drawHeader(dc *gg.Context, week *service.Week) {
	start := week.Start
	end := start.AddDate(0, 0, service.DaysInWeek-1)

	title := monthName(start.Month())
	if start.Month() != end.Month() {
		title += " - " + monthName(end.Month())
	}
	title += " " + start.Format("2006")

	loadFont(dc, titleFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(title, 20, float64(headerHeight)/4, 0, 0.5)
}

// drawSlotLabels подписи времени слотов слева
func drawSlotLabels(dc *gg.Context, cellHeight float64) {
	loadFont(dc, slotLabelFontSize)
	dc.SetColor(slotLabelColor)

	for i, slot := range timegrid.Slots() {
		y := float64(headerHeight) + float64(i)*cellHeight + cellHeight/2
		dc.DrawStringAnchored(string(slot.Code)+"  "+slot.Label(), float64(leftLabelsWidth)-10, y, 1, 0.35)
	}
}

// drawDayBackground рисует фон дня
func drawDayBackground(dc *gg.Context, x float64, dayWidth, gridHeight, dayIndex int, isToday bool) {
	switch {
	case isToday:
		dc.SetColor(todayBgColor)
	case dayIndex%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, float64(headerHeight), float64(dayWidth), float64(gridHeight))
	dc.Fill()
}

// drawDayHeader рисует название дня недели и дату
func drawDayHeader(dc *gg.Context, date time.Time, x float64, dayWidth int) {
	loadFont(dc, dayFontSize, FontStyleBold)
	dc.SetColor(textColor)
	cx := x + float64(dayWidth)/2
	dc.DrawStringAnchored(weekdayShort(date.Weekday()), cx, float64(headerHeight)-40, 0.5, 0.5)
	dc.DrawStringAnchored(date.Format("02.01"), cx, float64(headerHeight)-14, 0.5, 0.5)
}

// drawSlot рисует один слот
func drawSlot(dc *gg.Context, week *service.Week, slot service.SlotAvailability, x, y float64, dayWidth int, cellHeight float64, names map[int64]string) {
	state := stateOf(slot)
	fill := stateColor(state)
	w := float64(dayWidth) - dayPaddingX*2
	h := cellHeight - slotPaddingY*2

	dc.SetColor(slotShadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, y+slotPaddingY+shadowOffset, w, h, slotBorderRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x+dayPaddingX, y+slotPaddingY, w, h, slotBorderRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+dayPaddingX, y+slotPaddingY, w, h, slotBorderRadius)
	dc.Stroke()

	text := slotText(week, slot, names)
	if text == "" {
		return
	}

	loadFont(dc, slotTextFontSize)
	if state == slotBooked {
		dc.SetColor(slotBookedTextColor)
	} else {
		dc.SetColor(slotTextColor)
	}
	dc.DrawStringAnchored(truncate(text, maxLabelRunes), x+dayPaddingX+8, y+cellHeight/2, 0, 0.35)
}

func stateOf(slot service.SlotAvailability) slotState {
	switch {
	case slot.Booking != nil && slot.Booking.IsSelfSession():
		return slotBlocked
	case slot.Booking != nil:
		return slotBooked
	case slot.Available:
		return slotFree
	default:
		return slotUnavailable
	}
}

// slotText подпись занятого слота: имя второго участника или тема
func slotText(week *service.Week, slot service.SlotAvailability, names map[int64]string) string {
	b := slot.Booking
	if b == nil {
		return ""
	}
	if b.IsSelfSession() {
		return "блок"
	}

	other := b.TeacherID
	if week.SelfMode {
		other = b.StudentID
	}
	if name := names[other]; name != "" {
		return name
	}
	return b.Topic
}

func stateColor(s slotState) color.RGBA {
	switch s {
	case slotFree:
		return slotFreeColor
	case slotBooked:
		return slotBookedColor
	case slotBlocked:
		return slotBlockedColor
	default:
		return slotUnavailableColor
	}
}

// darkenColor затемняет цвет на указанный множитель
func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// drawCurrentTimeLine рисует красную линию текущего времени внутри сегодняшнего дня
func drawCurrentTimeLine(dc *gg.Context, now time.Time, x float64, dayWidth int, cellHeight float64) {
	slots := timegrid.Slots()
	first := slots[0].Start
	last := slots[len(slots)-1].End()

	sinceMidnight := time.Duration(now.Hour())*time.Hour + time.Duration(now.Minute())*time.Minute
	if sinceMidnight < first || sinceMidnight > last {
		return
	}

	y := float64(headerHeight) + float64(sinceMidnight-first)/float64(timegrid.SlotLength)*cellHeight
	dc.SetColor(currentTimeColor)
	dc.SetLineWidth(2.0)
	dc.DrawLine(x, y, x+float64(dayWidth), y)
	dc.Stroke()
}

// drawLegend рисует легенду под сеткой
func drawLegend(dc *gg.Context, selfMode bool) {
	items := []struct {
		Label string
		Clr   color.Color
	}{
		{"Свободно", slotFreeColor},
		{"Занятие", slotBookedColor},
		{"Недоступно", slotUnavailableColor},
	}
	if selfMode {
		items = append(items, struct {
			Label string
			Clr   color.Color
		}{"Заблокировано", slotBlockedColor})
	}

	boxW, boxH := 20.0, 14.0
	liX := float64(leftLabelsWidth)
	liY := float64(imageHeight) - legendHeight/2 - boxH/2

	for _, item := range items {
		dc.SetColor(item.Clr)
		dc.DrawRoundedRectangle(liX, liY, boxW, boxH, 3)
		dc.Fill()

		loadFont(dc, legendItemFontSize)
		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.Label, liX+boxW+8, liY+boxH/2, 0, 0.35)
		w, _ := dc.MeasureString(item.Label)
		liX += boxW + 8 + w + 30
	}
}

// encodeImage кодирует изображение в PNG
func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func weekdayShort(weekday time.Weekday) string {
	return [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}[weekday]
}

func monthName(month time.Month) string {
	return [...]string{"", "Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
		"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь"}[month]
}

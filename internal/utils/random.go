package utils

import (
	"fmt"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, py := range pinyinArray {
		length := rand.Intn(len(py)) + 1
		username += py[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

var shopKinds = []string{"理发店", "美甲店", "按摩馆", "牙科诊所", "宠物美容", "健身工作室"}

var serviceNames = []string{"剪发", "染发", "洗护", "修甲", "全身按摩", "足疗", "洁牙", "体检", "私教课"}

var timezones = []string{"America/Sao_Paulo", "Asia/Shanghai", "Europe/Berlin", "UTC", "UTC-03:00"}

// 生成巴西格式的手机号，方便通过号码校验
func GenerateRandomPhone() string {
	return fmt.Sprintf("+55119%08d", rand.Intn(100000000))
}

// 用 Fisher-Yates 洗牌算法来生成随机的工作日
func GenerateRandomWorkingDays() []int32 {
	days := []int32{1, 2, 3, 4, 5, 6, 7}

	for i := len(days) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		days[i], days[j] = days[j], days[i]
	}

	n := rand.Intn(len(days)) + 1

	return days[:n]
}

// 生成一个合法的工作时间，以半小时为单位，大约一半带有午休
func GenerateRandomWorkSchedule() domain.WorkSchedule {
	start := int32(rand.Intn(5)+6) * 60     // 06:00 ~ 10:00
	end := start + int32(rand.Intn(9)+6)*60 // 工作 6 ~ 14 小时
	ws := domain.WorkSchedule{
		WorkingDays: GenerateRandomWorkingDays(),
		WorkStart:   start,
		WorkEnd:     end,
	}

	if rand.Intn(2) == 0 {
		breakStart := start + int32(rand.Intn(4)+2)*60
		breakEnd := breakStart + int32(rand.Intn(2)+1)*30
		ws.BreakStart, ws.BreakEnd = &breakStart, &breakEnd
	}

	return ws
}

func GenerateRandomProvider(password string, emailDomainName string) (*domain.Provider, error) {
	ownerName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(ownerName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	provider := &domain.Provider{
		Username:     username,
		PasswordHash: string(passwordHash),
		Name:         ownerName + shopKinds[rand.Intn(len(shopKinds))],
		Email:        username + "@" + emailDomainName,
		Phone:        GenerateRandomPhone(),
		Timezone:     timezones[rand.Intn(len(timezones))],
		Schedule:     GenerateRandomWorkSchedule(),
	}

	return provider, nil
}

func GenerateRandomStaffMember(providerID int64, emailDomainName string) *domain.StaffMember {
	name := GenerateRandomChineseName()
	sm := &domain.StaffMember{
		ProviderID: providerID,
		Name:       name,
		Email:      GenerateUsernameFromChineseName(name) + "@" + emailDomainName,
		Phone:      GenerateRandomPhone(),
		IsActive:   rand.Intn(10) != 0,
	}

	if rand.Intn(3) == 0 {
		ws := GenerateRandomWorkSchedule()
		sm.Schedule = &ws
	}

	return sm
}

func GenerateRandomService(providerID int64) *domain.Service {
	return &domain.Service{
		ProviderID:      providerID,
		Name:            serviceNames[rand.Intn(len(serviceNames))] + GenerateRandomID(0, 4),
		Description:     "服务描述" + GenerateRandomID(12, 4),
		DurationMinutes: int32(rand.Intn(8)+1) * 15,
		Price:           int64(rand.Intn(500)+1) * 100,
		IsActive:        rand.Intn(10) != 0,
	}
}

func GenerateRandomTimeExclusion(providerID int64) *domain.TimeExclusion {
	start := int32(rand.Intn(20)+4) * 30
	ex := &domain.TimeExclusion{
		ProviderID: providerID,
		Name:       "屏蔽时段" + GenerateRandomID(3, 3),
		StartTime:  start,
		EndTime:    start + int32(rand.Intn(4)+1)*30,
		IsActive:   true,
	}

	if rand.Intn(2) == 0 {
		day := int32(rand.Intn(7) + 1)
		ex.Weekday = &day
	}

	return ex
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	randomID := make([]rune, letterLength+digitLength)
	for i := range randomID {
		if i < letterLength {
			randomID[i] = letters[rand.Intn(52)]
		} else {
			randomID[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(randomID)
}

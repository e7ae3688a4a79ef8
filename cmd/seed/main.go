package main

import (
	"time"

	"github.com/kosku-next/internal/config"
	"github.com/kosku-next/internal/constants"
	"github.com/kosku-next/internal/logger"
	"github.com/kosku-next/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 楼栋
	building := models.Building{Name: "Kost Melati", Address: "Jl. Kemang Raya No. 12, Jakarta Selatan"}
	var existingBuilding models.Building
	if err := models.DB.Where("name = ?", building.Name).First(&existingBuilding).Error; err != nil {
		if err := models.DB.Create(&building).Error; err != nil {
			stdLog.Fatalf("Failed to create building: %v", err)
		}
		stdLog.Printf("Created building: %s", building.Name)
	} else {
		building = existingBuilding
		stdLog.Printf("Building already exists: %s", building.Name)
	}

	// 楼层
	floors := []models.Floor{
		{BuildingID: building.ID, Name: "Lantai 1", Level: 1},
		{BuildingID: building.ID, Name: "Lantai 2", Level: 2},
	}
	for i := range floors {
		var existing models.Floor
		if err := models.DB.Where("building_id = ? AND level = ?", building.ID, floors[i].Level).First(&existing).Error; err != nil {
			if err := models.DB.Create(&floors[i]).Error; err != nil {
				stdLog.Fatalf("Failed to create floor %s: %v", floors[i].Name, err)
			}
			stdLog.Printf("Created floor: %s", floors[i].Name)
		} else {
			floors[i] = existing
		}
	}

	// 房型
	roomTypes := []models.RoomType{
		{Name: "Standar", Description: "Kamar standar dengan kipas angin", BaseRent: models.NewMoneyFromInt(1200000), BaseDeposit: models.NewMoneyFromInt(1200000)},
		{Name: "Deluxe", Description: "Kamar AC dengan kamar mandi dalam", BaseRent: models.NewMoneyFromInt(1800000), BaseDeposit: models.NewMoneyFromInt(1800000)},
	}
	for i := range roomTypes {
		var existing models.RoomType
		if err := models.DB.Where("name = ?", roomTypes[i].Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&roomTypes[i]).Error; err != nil {
				stdLog.Fatalf("Failed to create room type %s: %v", roomTypes[i].Name, err)
			}
			stdLog.Printf("Created room type: %s", roomTypes[i].Name)
		} else {
			roomTypes[i] = existing
		}
	}

	// 房间
	rooms := []models.Room{
		{BuildingID: building.ID, FloorID: floors[0].ID, RoomTypeID: roomTypes[0].ID, Number: "101"},
		{BuildingID: building.ID, FloorID: floors[0].ID, RoomTypeID: roomTypes[1].ID, Number: "102"},
		{BuildingID: building.ID, FloorID: floors[1].ID, RoomTypeID: roomTypes[1].ID, Number: "201"},
	}
	for i := range rooms {
		var existing models.Room
		if err := models.DB.Where("building_id = ? AND number = ?", building.ID, rooms[i].Number).First(&existing).Error; err != nil {
			if err := models.DB.Create(&rooms[i]).Error; err != nil {
				stdLog.Fatalf("Failed to create room %s: %v", rooms[i].Number, err)
			}
			stdLog.Printf("Created room: %s", rooms[i].Number)
		} else {
			rooms[i] = existing
		}
	}

	// 租客
	user := models.User{
		Email: "dewi@example.com",
		Name:  "Dewi Lestari",
		Phone: "+62 812-3456-7890",
		Roles: models.StringList{"tenant"},
	}
	var existingUser models.User
	if err := models.DB.Where("email = ?", user.Email).First(&existingUser).Error; err != nil {
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Fatalf("Failed to create user: %v", err)
		}
		stdLog.Printf("Created user: %s", user.Email)
	} else {
		user = existingUser
	}

	// 租约与首期账单
	startDate := time.Date(time.Now().Year(), time.Now().Month(), 1, 0, 0, 0, 0, time.Local)
	contract := models.Contract{
		UserID:        user.ID,
		RoomID:        rooms[1].ID,
		BillingPeriod: constants.BillingPeriodMonthly,
		StartDate:     startDate,
		RentAmount:    roomTypes[1].BaseRent,
		DepositAmount: roomTypes[1].BaseDeposit,
		Status:        constants.ContractStatusActive,
	}
	var existingContract models.Contract
	if err := models.DB.Where("user_id = ? AND room_id = ?", user.ID, contract.RoomID).First(&existingContract).Error; err != nil {
		if err := models.DB.Create(&contract).Error; err != nil {
			stdLog.Fatalf("Failed to create contract: %v", err)
		}
		stdLog.Printf("Created contract: user=%d room=%d", user.ID, contract.RoomID)
	} else {
		contract = existingContract
	}

	invoice := models.Invoice{
		ContractID:    contract.ID,
		UserID:        user.ID,
		PeriodIndex:   1,
		PeriodStart:   startDate,
		PeriodEnd:     startDate.AddDate(0, 1, 0),
		RentAmount:    contract.RentAmount,
		DepositAmount: contract.DepositAmount,
		Status:        constants.InvoiceStatusIssued,
	}
	var existingInvoice models.Invoice
	if err := models.DB.Where("contract_id = ? AND period_index = ?", contract.ID, 1).First(&existingInvoice).Error; err != nil {
		if err := models.DB.Create(&invoice).Error; err != nil {
			stdLog.Fatalf("Failed to create invoice: %v", err)
		}
		stdLog.Printf("Created invoice: contract=%d period=1", contract.ID)
	}

	// 示例促销
	promotions := []models.Promotion{
		{
			Name:      "Diskon Bulan Pertama",
			Slug:      "diskon-bulan-pertama",
			StackMode: constants.StackModeStack,
			Priority:  100,
			IsActive:  true,
			Tags:      models.StringList{"new-tenant"},
			Scopes:    []models.PromotionScope{{ScopeType: constants.ScopeTypeGlobal}},
			Rules: []models.PromotionRule{{
				AppliesToRent:  true,
				BillingPeriods: models.StringList{constants.BillingPeriodMonthly},
				FirstNPeriods:  intPtr(1),
			}},
			Actions: []models.PromotionAction{{
				ActionType:     constants.ActionTypePercent,
				AppliesToRent:  true,
				PercentBps:     1000,
				MaxDiscountIDR: moneyPtr(200000),
			}},
		},
		{
			Name:          "Kupon Akhir Tahun",
			Slug:          "kupon-akhir-tahun",
			StackMode:     constants.StackModeExclusive,
			Priority:      500,
			RequireCoupon: true,
			IsActive:      true,
			Scopes:        []models.PromotionScope{{ScopeType: constants.ScopeTypeRoomType, RoomTypeID: &roomTypes[1].ID}},
			Rules: []models.PromotionRule{{
				AppliesToRent:    true,
				AppliesToDeposit: true,
				MinSpendIDR:      models.NewMoneyFromInt(1500000),
			}},
			Actions: []models.PromotionAction{{
				ActionType:    constants.ActionTypeAmount,
				AppliesToRent: true,
				AmountIDR:     models.NewMoneyFromInt(250000),
			}},
			Coupons: []models.PromotionCoupon{{
				Code:           "AKHIRTAHUN",
				IsActive:       true,
				MaxRedemptions: intPtr(100),
			}},
		},
	}
	for i := range promotions {
		var existing models.Promotion
		if err := models.DB.Where("slug = ?", promotions[i].Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&promotions[i]).Error; err != nil {
				stdLog.Fatalf("Failed to create promotion %s: %v", promotions[i].Slug, err)
			}
			stdLog.Printf("Created promotion: %s", promotions[i].Slug)
		} else {
			stdLog.Printf("Promotion already exists: %s", promotions[i].Slug)
		}
	}

	stdLog.Printf("Seed completed")
}

func intPtr(v int) *int {
	return &v
}

func moneyPtr(v int64) *models.Money {
	m := models.NewMoneyFromInt(v)
	return &m
}

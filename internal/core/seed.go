package core

import "time"

// Seed records loaded into a fresh store, newest first.

func SeedCampaigns() []Campaign {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []Campaign{
		{
			ID:            "1",
			Title:         "Emergency Food Relief",
			Description:   "Providing immediate food assistance to families affected by natural disasters",
			Category:      "Food",
			Location:      "Haiti",
			TargetAmount:  NewMoney(10000),
			CurrentAmount: NewMoney(5200),
			StartDate:     NewDate(2024, 1, 1),
			EndDate:       NewDate(2024, 3, 31),
			Status:        CampaignActive,
			Beneficiaries: 340,
			CreatedAt:     created,
		},
		{
			ID:            "2",
			Title:         "Clean Water Infrastructure",
			Description:   "Building sustainable water systems in rural communities",
			Category:      "Water",
			Location:      "Kenya",
			TargetAmount:  NewMoney(15000),
			CurrentAmount: NewMoney(12500),
			StartDate:     NewDate(2024, 1, 1),
			EndDate:       NewDate(2024, 6, 30),
			Status:        CampaignActive,
			Beneficiaries: 850,
			CreatedAt:     created,
		},
	}
}

func SeedDonations() []Donation {
	return []Donation{
		{
			ID:            "1",
			Title:         "Emergency Food Relief",
			Organization:  "World Food Programme",
			Location:      "Haiti",
			Amount:        NewMoney(5200),
			Date:          NewDate(2024, 1, 15),
			Status:        DonationDelivered,
			Beneficiaries: 340,
			Category:      "Food",
			CreatedAt:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:            "2",
			Title:         "Clean Water Infrastructure",
			Organization:  "Water.org",
			Location:      "Kenya",
			Amount:        NewMoney(12500),
			Date:          NewDate(2024, 1, 12),
			Status:        DonationInProgress,
			Beneficiaries: 850,
			Category:      "Water",
			CreatedAt:     time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:            "3",
			Title:         "Medical Supply Distribution",
			Organization:  "Doctors Without Borders",
			Location:      "Bangladesh",
			Amount:        NewMoney(8300),
			Date:          NewDate(2024, 1, 10),
			Status:        DonationDelivered,
			Beneficiaries: 520,
			Category:      "Healthcare",
			CreatedAt:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		},
	}
}

func SeedBeneficiaries() []Beneficiary {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []Beneficiary{
		{
			ID:        "1",
			Name:      "Maria Santos",
			Location:  "Port-au-Prince, Haiti",
			Age:       34,
			Family:    4,
			Needs:     Tags{"Food", "Medical"},
			LastAid:   NewDate(2024, 1, 15),
			Status:    BeneficiaryActive,
			Image:     "https://images.pexels.com/photos/1239291/pexels-photo-1239291.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&fit=crop",
			CreatedAt: created,
		},
		{
			ID:        "2",
			Name:      "Ahmed Hassan",
			Location:  "Nairobi, Kenya",
			Age:       28,
			Family:    6,
			Needs:     Tags{"Water", "Education"},
			LastAid:   NewDate(2024, 1, 12),
			Status:    BeneficiaryActive,
			Image:     "https://images.pexels.com/photos/1222271/pexels-photo-1222271.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&fit=crop",
			CreatedAt: created,
		},
		{
			ID:        "3",
			Name:      "Fatima Rahman",
			Location:  "Dhaka, Bangladesh",
			Age:       42,
			Family:    3,
			Needs:     Tags{"Healthcare", "Housing"},
			LastAid:   NewDate(2024, 1, 10),
			Status:    BeneficiaryCompleted,
			Image:     "https://images.pexels.com/photos/1181686/pexels-photo-1181686.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&fit=crop",
			CreatedAt: created,
		},
	}
}

package approval

// rulesSatisfied memeriksa apakah salah satu rule terpenuhi oleh keadaan
// approvals saat ini (OR antar rule). roleByApprover memetakan approver_id
// ke role user tersebut. Fungsi murni, tanpa akses database.
func rulesSatisfied(rules []ApprovalRule, approvals []Approval, roleByApprover map[string]string) bool {
	if len(approvals) == 0 {
		return false
	}
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		if ruleSatisfied(rule, approvals, roleByApprover) {
			return true
		}
	}
	return false
}

func ruleSatisfied(rule ApprovalRule, approvals []Approval, roleByApprover map[string]string) bool {
	switch rule.RuleType {
	case RuleTypePercentage:
		return percentageSatisfied(rule.PercentageThreshold, approvals)
	case RuleTypeSpecific:
		return specificApproverSatisfied(rule, approvals, roleByApprover)
	case RuleTypeHybrid:
		// hybrid = OR dari kedua kondisi
		return percentageSatisfied(rule.PercentageThreshold, approvals) ||
			specificApproverSatisfied(rule, approvals, roleByApprover)
	}
	return false
}

// percentageSatisfied menghitung persentase atas seluruh baris chain,
// bukan hanya yang sudah diputus. Pembagian real agar 2/3 = 66.67 persen.
func percentageSatisfied(threshold *int, approvals []Approval) bool {
	if threshold == nil {
		return false
	}
	total := len(approvals)
	if total == 0 {
		return false
	}
	approved := 0
	for _, a := range approvals {
		if a.Decision == DecisionApproved {
			approved++
		}
	}
	return 100*float64(approved)/float64(total) >= float64(*threshold)
}

func specificApproverSatisfied(rule ApprovalRule, approvals []Approval, roleByApprover map[string]string) bool {
	for _, a := range approvals {
		if a.Decision != DecisionApproved {
			continue
		}
		if rule.SpecificApproverUserID != nil && a.ApproverID == *rule.SpecificApproverUserID {
			return true
		}
		if rule.SpecificApproverRole != nil && *rule.SpecificApproverRole != "" &&
			roleByApprover[a.ApproverID.String()] == *rule.SpecificApproverRole {
			return true
		}
	}
	return false
}

package database

import (
	"encoding/json"
	"fmt"

	"github.com/evandrarf/drivequiz-be/internal/entity"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SeedQuestion struct {
	ID            string
	Category      string
	Text          string
	Options       []string
	CorrectAnswer string
	Explanation   string
}

const (
	CategoryRoadSigns   = "road_signs"
	CategoryRightOfWay  = "right_of_way"
	CategorySpeedLimits = "speed_limits"
	CategorySafety      = "safety"
	CategoryFirstAid    = "first_aid"
)

// QuestionBankData - Soal teori dasar untuk seed awal
var QuestionBankData = []SeedQuestion{
	// ==================== ROAD SIGNS ====================
	{ID: "rs-001", Category: CategoryRoadSigns, Text: "What does a red octagonal sign mean?", Options: []string{"Stop completely", "Slow down", "No entry", "Give way"}, CorrectAnswer: "Stop completely", Explanation: "An octagonal red sign is always a stop sign. You must come to a full stop at the line."},
	{ID: "rs-002", Category: CategoryRoadSigns, Text: "An inverted red-bordered triangle means:", Options: []string{"Give way", "Stop", "Danger ahead", "Roundabout"}, CorrectAnswer: "Give way", Explanation: "The inverted triangle is the give way sign. Yield to traffic on the main road."},
	{ID: "rs-003", Category: CategoryRoadSigns, Text: "A round sign with a red border and a white background usually:", Options: []string{"Gives an order or prohibition", "Gives information", "Warns of a hazard", "Shows a direction"}, CorrectAnswer: "Gives an order or prohibition", Explanation: "Circles give orders. Red rings prohibit, blue circles instruct."},
	{ID: "rs-004", Category: CategoryRoadSigns, Text: "A blue circular sign with a white arrow means:", Options: []string{"Mandatory direction", "Recommended route", "One-way street ahead", "Parking"}, CorrectAnswer: "Mandatory direction", Explanation: "Blue circles are mandatory instructions. You must follow the arrow."},
	{ID: "rs-005", Category: CategoryRoadSigns, Text: "A triangular sign with a red border warns of:", Options: []string{"A hazard ahead", "A prohibition", "A service area", "The end of a restriction"}, CorrectAnswer: "A hazard ahead", Explanation: "Triangles warn. Slow down and look for the hazard shown."},
	{ID: "rs-006", Category: CategoryRoadSigns, Text: "A red circle with a white horizontal bar means:", Options: []string{"No entry", "Road closed to pedestrians", "End of motorway", "No parking"}, CorrectAnswer: "No entry", Explanation: "The no entry sign forbids vehicles from entering the road in that direction."},
	{ID: "rs-007", Category: CategoryRoadSigns, Text: "A flashing amber traffic light means:", Options: []string{"Proceed with caution", "Stop and wait", "The light is broken, ignore it", "Pedestrians have priority only"}, CorrectAnswer: "Proceed with caution", Explanation: "Flashing amber allows you to proceed, but only if the way is clear."},

	// ==================== RIGHT OF WAY ====================
	{ID: "rw-001", Category: CategoryRightOfWay, Text: "At an unmarked crossroads, who has priority?", Options: []string{"Vehicles coming from the right", "Vehicles coming from the left", "The larger vehicle", "Whoever arrives fastest"}, CorrectAnswer: "Vehicles coming from the right", Explanation: "Where no signs apply, yield to traffic approaching from your right."},
	{ID: "rw-002", Category: CategoryRightOfWay, Text: "An emergency vehicle with sirens approaches from behind. You should:", Options: []string{"Pull over safely and let it pass", "Speed up to clear the road", "Stop immediately in your lane", "Ignore it unless it flashes its lights at you"}, CorrectAnswer: "Pull over safely and let it pass", Explanation: "Make room without creating danger. Do not brake suddenly in your lane."},
	{ID: "rw-003", Category: CategoryRightOfWay, Text: "When entering a roundabout you must give way to:", Options: []string{"Traffic already on the roundabout", "Traffic entering after you", "Pedestrians only", "Nobody"}, CorrectAnswer: "Traffic already on the roundabout", Explanation: "Vehicles circulating on the roundabout have priority over those entering."},
	{ID: "rw-004", Category: CategoryRightOfWay, Text: "A pedestrian has stepped onto a zebra crossing. You must:", Options: []string{"Stop and let them cross", "Sound the horn", "Pass behind them", "Continue if they are on the far side"}, CorrectAnswer: "Stop and let them cross", Explanation: "Pedestrians on a zebra crossing have priority. Stop and wait until they are clear."},
	{ID: "rw-005", Category: CategoryRightOfWay, Text: "Turning left at a junction, you must give way to:", Options: []string{"Pedestrians crossing the road you turn into", "Vehicles behind you", "Parked cars", "Cyclists behind you only"}, CorrectAnswer: "Pedestrians crossing the road you turn into", Explanation: "Pedestrians already crossing the side road have priority over turning traffic."},
	{ID: "rw-006", Category: CategoryRightOfWay, Text: "On a narrow road with parked cars on your side, an oncoming car approaches. Who should wait?", Options: []string{"You", "The oncoming car", "Whoever is faster", "Neither"}, CorrectAnswer: "You", Explanation: "The obstruction is on your side, so you give way to oncoming traffic."},

	// ==================== SPEED LIMITS ====================
	{ID: "sl-001", Category: CategorySpeedLimits, Text: "Unless signed otherwise, the speed limit in a built-up area is:", Options: []string{"50 km/h", "30 km/h", "70 km/h", "90 km/h"}, CorrectAnswer: "50 km/h", Explanation: "The default urban limit is 50 km/h where no other limit is signed."},
	{ID: "sl-002", Category: CategorySpeedLimits, Text: "Near a school with a 30 km/h zone sign, you should drive:", Options: []string{"At no more than 30 km/h", "At 50 km/h outside school hours only", "As fast as traffic allows", "At 40 km/h"}, CorrectAnswer: "At no more than 30 km/h", Explanation: "Zone limits are maximums. Children can appear suddenly."},
	{ID: "sl-003", Category: CategorySpeedLimits, Text: "In heavy rain your safe speed should be:", Options: []string{"Lower than the posted limit", "Equal to the posted limit", "Higher to get through the rain faster", "Unchanged"}, CorrectAnswer: "Lower than the posted limit", Explanation: "Stopping distances roughly double on wet roads. The limit is not a target."},
	{ID: "sl-004", Category: CategorySpeedLimits, Text: "A speed limit sign with a number in a red circle shows:", Options: []string{"The maximum speed", "The recommended speed", "The minimum speed", "The average speed"}, CorrectAnswer: "The maximum speed", Explanation: "Red ring signs are prohibitions, so the number is a maximum."},
	{ID: "sl-005", Category: CategorySpeedLimits, Text: "When towing a trailer, speed limits are usually:", Options: []string{"Lower than for a car alone", "The same as for a car alone", "Higher on motorways", "Not applicable"}, CorrectAnswer: "Lower than for a car alone", Explanation: "Towing reduces stability and braking performance, so lower limits apply."},
	{ID: "sl-006", Category: CategorySpeedLimits, Text: "On a motorway you may drive slower than the minimum speed when:", Options: []string{"Conditions such as fog or congestion require it", "You are looking for an exit", "You want to save fuel", "Never"}, CorrectAnswer: "Conditions such as fog or congestion require it", Explanation: "Minimum speeds do not apply when traffic or weather make them unsafe."},

	// ==================== SAFETY ====================
	{ID: "sf-001", Category: CategorySafety, Text: "What is the recommended minimum following distance in good conditions?", Options: []string{"Two seconds", "One car length", "Half a second", "Five metres"}, CorrectAnswer: "Two seconds", Explanation: "The two-second rule gives time to react. Double it in the wet."},
	{ID: "sf-002", Category: CategorySafety, Text: "Before changing lanes you should:", Options: []string{"Check mirrors and blind spot, then signal", "Signal and move immediately", "Only check the rear-view mirror", "Sound the horn"}, CorrectAnswer: "Check mirrors and blind spot, then signal", Explanation: "Mirror, signal, manoeuvre. The blind spot is not visible in mirrors."},
	{ID: "sf-003", Category: CategorySafety, Text: "Using a hand-held phone while driving is:", Options: []string{"Prohibited", "Allowed at red lights", "Allowed below 30 km/h", "Allowed for short calls"}, CorrectAnswer: "Prohibited", Explanation: "Holding a phone while in control of a vehicle is banned, even when stationary in traffic."},
	{ID: "sf-004", Category: CategorySafety, Text: "When must rear-seat passengers wear seat belts?", Options: []string{"Always, when belts are fitted", "Only on motorways", "Only if they are children", "Never"}, CorrectAnswer: "Always, when belts are fitted", Explanation: "Unbelted rear passengers endanger everyone in the car during a crash."},
	{ID: "sf-005", Category: CategorySafety, Text: "You feel tired on a long journey. The best action is to:", Options: []string{"Stop somewhere safe and rest", "Open the window and continue", "Turn up the radio", "Drive faster to arrive sooner"}, CorrectAnswer: "Stop somewhere safe and rest", Explanation: "Only rest cures fatigue. Fresh air and music give a false sense of alertness."},
	{ID: "sf-006", Category: CategorySafety, Text: "Your car starts to skid on a wet road. You should:", Options: []string{"Ease off the accelerator and steer gently", "Brake hard", "Accelerate", "Turn the wheel sharply the other way"}, CorrectAnswer: "Ease off the accelerator and steer gently", Explanation: "Harsh inputs make skids worse. Smooth steering helps the tyres regain grip."},
	{ID: "sf-007", Category: CategorySafety, Text: "When should you use dipped headlights during the day?", Options: []string{"When visibility is seriously reduced", "Never", "Only on motorways", "Only in tunnels longer than 1 km"}, CorrectAnswer: "When visibility is seriously reduced", Explanation: "Rain, fog or snow reduce visibility. Lights help others see you."},

	// ==================== FIRST AID ====================
	{ID: "fa-001", Category: CategoryFirstAid, Text: "At the scene of a crash, what should you do first?", Options: []string{"Make the scene safe and warn other traffic", "Move all injured people", "Give them something to drink", "Leave immediately"}, CorrectAnswer: "Make the scene safe and warn other traffic", Explanation: "Prevent a second collision first. Use hazard lights and a warning triangle."},
	{ID: "fa-002", Category: CategoryFirstAid, Text: "An injured motorcyclist is conscious. You should:", Options: []string{"Not remove their helmet", "Remove their helmet immediately", "Sit them upright", "Give them water"}, CorrectAnswer: "Not remove their helmet", Explanation: "Removing a helmet can worsen spinal injuries. Leave it unless breathing is at risk."},
	{ID: "fa-003", Category: CategoryFirstAid, Text: "To stop heavy bleeding you should:", Options: []string{"Apply firm pressure to the wound", "Wash the wound with water", "Apply a tourniquet first", "Leave it until help arrives"}, CorrectAnswer: "Apply firm pressure to the wound", Explanation: "Direct pressure is the first and most effective measure against bleeding."},
	{ID: "fa-004", Category: CategoryFirstAid, Text: "Which emergency number works across the EU?", Options: []string{"112", "911", "999", "110"}, CorrectAnswer: "112", Explanation: "112 is the common European emergency number and works from any phone."},
	{ID: "fa-005", Category: CategoryFirstAid, Text: "An unconscious casualty is breathing normally. You should place them:", Options: []string{"In the recovery position", "Flat on their back", "Sitting up", "Face down"}, CorrectAnswer: "In the recovery position", Explanation: "The recovery position keeps the airway open and lets fluids drain."},
}

// SeedQuestionBank - Isi tabel questions dari QuestionBankData
func SeedQuestionBank(db *gorm.DB, log *logrus.Logger) error {
	var count int64
	if err := db.Model(&entity.Question{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	if count > 0 {
		log.Info("Question bank already seeded, skipping...")
		return nil
	}

	log.Info("Seeding question bank...")

	for _, q := range QuestionBankData {
		optionsJSON, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("failed to marshal options for %s: %w", q.ID, err)
		}

		question := entity.Question{
			QuestionID:    q.ID,
			Text:          q.Text,
			Options:       string(optionsJSON),
			CorrectAnswer: q.CorrectAnswer,
			Category:      q.Category,
			Explanation:   q.Explanation,
		}

		if err := db.Create(&question).Error; err != nil {
			return fmt.Errorf("failed to seed question %s: %w", q.ID, err)
		}
	}

	log.Infof("Successfully seeded %d questions", len(QuestionBankData))
	return nil
}

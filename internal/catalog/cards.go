// internal/catalog/cards.go
package catalog

// allCards returns the full 106-copy Subway Deal deck definition:
// 28 properties, 11 wildcards, 34 actions, 13 rent cards, 20 money cards.
func allCards() []*Card {
	var cards []*Card

	prop := func(id, name string, value int, color Color) {
		cards = append(cards, &Card{
			ID: id, Type: TypeProperty, Name: name, Value: value,
			Colors: []Color{color}, Quantity: 1,
		})
	}

	// Brown (J/Z)
	prop("prop_j", "J", 1, Brown)
	prop("prop_z", "Z", 1, Brown)
	// Light Blue (A/C/E)
	prop("prop_a", "A", 1, Blue)
	prop("prop_c", "C", 1, Blue)
	prop("prop_e", "E", 1, Blue)
	// Pink (Shuttles)
	prop("prop_42nd_shuttle", "42nd St Shuttle", 2, Pink)
	prop("prop_franklin_shuttle", "Franklin Ave Shuttle", 2, Pink)
	prop("prop_rockaway_shuttle", "Rockaway Park Shuttle", 2, Pink)
	// Orange (B/D/F)
	prop("prop_b", "B", 2, Orange)
	prop("prop_d", "D", 2, Orange)
	prop("prop_f", "F", 2, Orange)
	// Red (1/2/3)
	prop("prop_1", "1", 3, Red)
	prop("prop_2", "2", 3, Red)
	prop("prop_3", "3", 3, Red)
	// Yellow (N/Q/R)
	prop("prop_n", "N", 3, Yellow)
	prop("prop_q", "Q", 3, Yellow)
	prop("prop_r", "R", 3, Yellow)
	// Green (Hub Stations)
	prop("prop_penn", "Penn Station", 4, Green)
	prop("prop_grand_central", "Grand Central", 4, Green)
	prop("prop_atlantic", "Atlantic Terminal", 4, Green)
	// Dark Blue (Stadiums)
	prop("prop_citi_field", "Citi Field", 4, DarkBlue)
	prop("prop_yankee_stadium", "Yankee Stadium", 4, DarkBlue)
	// Railroads
	prop("prop_lirr", "LIRR", 2, Railroad)
	prop("prop_metro_north", "Metro-North", 2, Railroad)
	prop("prop_nj_transit", "NJ Transit", 2, Railroad)
	prop("prop_path", "PATH", 2, Railroad)
	// Utilities (G/L)
	prop("prop_g", "G", 2, Utility)
	prop("prop_l", "L", 2, Utility)

	wild := func(id, name string, value, qty int, colors ...Color) {
		cards = append(cards, &Card{
			ID: id, Type: TypeWildcard, Name: name, Value: value,
			Colors: colors, Quantity: qty,
		})
	}
	wild("wild_broadway", "Broadway Junction", 1, 1, Blue, Brown)
	wild("wild_jamaica", "Jamaica Station", 4, 1, Blue, Railroad)
	wild("wild_service_advisory", "Service Advisory", 2, 2, Pink, Orange)
	wild("wild_times_square", "Times Square", 3, 2, Red, Yellow)
	wild("wild_big_game", "Big Game", 4, 1, DarkBlue, Green)
	wild("wild_grand_central", "Grand Central", 4, 1, Green, Railroad)
	wild("wild_weekend_service", "Weekend Service", 2, 1, Utility, Railroad)
	wild("wild_fulton", "Fulton Center", 0, 2, AllColors...)

	action := func(id, name string, value, qty int, effect string) {
		cards = append(cards, &Card{
			ID: id, Type: TypeAction, Name: name, Value: value,
			Effect: effect, Quantity: qty,
		})
	}
	action("action_swipe_in", NameSwipeIn, 1, 10, "Draw 2 extra cards")
	action("action_fare_evasion", NameFareEvasion, 4, 3, "Cancel any action card played against you")
	action("action_power_broker", NamePowerBroker, 3, 3, "Steal a property from any player (not from a complete set)")
	action("action_service_change", NameServiceChange, 3, 3, "Swap one of your properties with another player's (not from complete sets)")
	action("action_line_closure", NameLineClosure, 5, 2, "Steal a complete property set from any player (includes improvements)")
	action("action_missed_train", NameMissedTrain, 3, 3, "Force any player to pay you $5")
	action("action_its_my_stop", NameItsMyStop, 2, 3, "All players pay you $2")
	action("action_rush_hour", NameRushHour, 1, 2, "Play with a rent card to double the rent amount")
	action("action_express_service", NameExpressService, 3, 3, "Add to a complete set to add $3 to rent (not on Railroads/Utilities)")
	action("action_new_station", NameNewStation, 4, 2, "Add to a complete set with Express Service to add $4 to rent")

	rent := func(id string, qty int, colors ...Color) {
		cards = append(cards, &Card{
			ID: id, Type: TypeRent, Name: "Rent", Value: 1,
			Colors: colors, Quantity: qty,
		})
	}
	rent("rent_blue_brown", 2, Blue, Brown)
	rent("rent_pink_orange", 2, Pink, Orange)
	rent("rent_red_yellow", 2, Red, Yellow)
	rent("rent_darkblue_green", 2, DarkBlue, Green)
	rent("rent_railroad_utility", 2, Railroad, Utility)
	cards = append(cards, &Card{
		ID: "rent_wild", Type: TypeRent, Name: "Wild Rent", Value: 3, Quantity: 3,
	})

	money := func(id, name string, value, qty int) {
		cards = append(cards, &Card{
			ID: id, Type: TypeMoney, Name: name, Value: value, Quantity: qty,
		})
	}
	money("money_1", "$1", 1, 6)
	money("money_2", "$2", 2, 5)
	money("money_3", "$3", 3, 3)
	money("money_4", "$4", 4, 3)
	money("money_5", "$5", 5, 2)
	money("money_10", "$10", 10, 1)

	return cards
}

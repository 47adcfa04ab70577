package catalog

// Default returns the built-in fleet catalog.
func Default() *Catalog {
	return &Catalog{
		Sensors: defaultSensors(),
		Vessels: defaultVessels(),
	}
}

func defaultVessels() []Vessel {
	return []Vessel{
		{ID: "armada-7801", Name: "ARMADA 7801"},
		{ID: "armada-7802", Name: "ARMADA 7802"},
		{ID: "armada-7803", Name: "ARMADA 7803"},
		{ID: "armada-7804", Name: "ARMADA 7804"},
		{ID: "armada-7805", Name: "ARMADA 7805"},
	}
}

func defaultSensors() []Sensor {
	return []Sensor{
		// Engine
		{ID: "engine_main_temp", Name: "Main Engine Temperature", Unit: "°C", Color: "#ff6b6b", Category: CategoryEngine, Min: 60, Max: 95, Optimal: 80},
		{ID: "engine_aux_temp", Name: "Auxiliary Engine Temperature", Unit: "°C", Color: "#ff8e8e", Category: CategoryEngine, Min: 55, Max: 90, Optimal: 75},
		{ID: "engine_coolant_temp", Name: "Engine Coolant Temperature", Unit: "°C", Color: "#ffb3b3", Category: CategoryEngine, Min: 70, Max: 95, Optimal: 82},
		{ID: "engine_oil_pressure", Name: "Engine Oil Pressure", Unit: "bar", Color: "#ff4757", Category: CategoryEngine, Min: 2.5, Max: 6.0, Optimal: 4.0},
		{ID: "engine_oil_temp", Name: "Engine Oil Temperature", Unit: "°C", Color: "#c44569", Category: CategoryEngine, Min: 50, Max: 85, Optimal: 70},
		{ID: "engine_rpm", Name: "Engine RPM", Unit: "rpm", Color: "#f8b500", Category: CategoryEngine, Min: 500, Max: 2000, Optimal: 1200},
		{ID: "turbo_pressure", Name: "Turbocharger Pressure", Unit: "bar", Color: "#ffa726", Category: CategoryEngine, Min: 0.8, Max: 2.5, Optimal: 1.5},

		// Fuel system
		{ID: "fuel_flow_rate", Name: "Fuel Flow Rate", Unit: "L/h", Color: "#4ecdc4", Category: CategoryFuel, Min: 50, Max: 300, Optimal: 150},
		{ID: "fuel_tank_level_1", Name: "Fuel Tank 1 Level", Unit: "%", Color: "#26d0ce", Category: CategoryFuel, Min: 10, Max: 100, Optimal: 75},
		{ID: "fuel_tank_level_2", Name: "Fuel Tank 2 Level", Unit: "%", Color: "#1dd1a1", Category: CategoryFuel, Min: 10, Max: 100, Optimal: 75},
		{ID: "fuel_pressure", Name: "Fuel Pressure", Unit: "bar", Color: "#00d2d3", Category: CategoryFuel, Min: 1.5, Max: 8.0, Optimal: 4.5},
		{ID: "fuel_temperature", Name: "Fuel Temperature", Unit: "°C", Color: "#55a3ff", Category: CategoryFuel, Min: 15, Max: 45, Optimal: 25},

		// Navigation & positioning
		{ID: "vessel_speed", Name: "Vessel Speed Over Ground", Unit: "knots", Color: "#45b7d1", Category: CategoryNavigation, Min: 0, Max: 15, Optimal: 8},
		{ID: "vessel_heading", Name: "Vessel Heading", Unit: "°", Color: "#96ceb4", Category: CategoryNavigation, Min: 0, Max: 360, Optimal: 180},
		{ID: "water_depth", Name: "Water Depth", Unit: "m", Color: "#6c5ce7", Category: CategoryNavigation, Min: 50, Max: 200, Optimal: 120},

		// Environmental
		{ID: "wind_speed", Name: "Wind Speed", Unit: "m/s", Color: "#a29bfe", Category: CategoryEnvironmental, Min: 0, Max: 25, Optimal: 8},
		{ID: "wind_direction", Name: "Wind Direction", Unit: "°", Color: "#fd79a8", Category: CategoryEnvironmental, Min: 0, Max: 360, Optimal: 180},
		{ID: "wave_height", Name: "Significant Wave Height", Unit: "m", Color: "#feca57", Category: CategoryEnvironmental, Min: 0, Max: 6, Optimal: 2},
		{ID: "air_temp", Name: "Air Temperature", Unit: "°C", Color: "#48dbfb", Category: CategoryEnvironmental, Min: 5, Max: 35, Optimal: 20},
		{ID: "water_temp", Name: "Water Temperature", Unit: "°C", Color: "#0abde3", Category: CategoryEnvironmental, Min: 8, Max: 28, Optimal: 18},
		{ID: "barometric_pressure", Name: "Barometric Pressure", Unit: "mbar", Color: "#006ba6", Category: CategoryEnvironmental, Min: 980, Max: 1040, Optimal: 1013},

		// Electrical
		{ID: "battery_voltage_main", Name: "Main Battery Voltage", Unit: "V", Color: "#ff9f43", Category: CategoryElectrical, Min: 22, Max: 28, Optimal: 24},
		{ID: "battery_voltage_aux", Name: "Auxiliary Battery Voltage", Unit: "V", Color: "#ffa502", Category: CategoryElectrical, Min: 11, Max: 14, Optimal: 12},
		{ID: "power_consumption", Name: "Total Power Consumption", Unit: "kW", Color: "#ff3838", Category: CategoryElectrical, Min: 50, Max: 500, Optimal: 200},

		// Hydraulics
		{ID: "hydraulic_pressure_main", Name: "Main Hydraulic Pressure", Unit: "bar", Color: "#7bed9f", Category: CategoryHydraulics, Min: 100, Max: 350, Optimal: 200},
		{ID: "hydraulic_oil_temp", Name: "Hydraulic Oil Temperature", Unit: "°C", Color: "#5f27cd", Category: CategoryHydraulics, Min: 40, Max: 80, Optimal: 60},
	}
}

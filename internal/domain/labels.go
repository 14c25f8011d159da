package domain

// StatusLabel is the display form of a hub status.
type StatusLabel struct {
	Label   string `json:"label"`
	LabelEs string `json:"label_es"`
	Color   string `json:"color"`
}

// ServiceLabel is the display form of a service.
type ServiceLabel struct {
	Icon    string `json:"icon"`
	Label   string `json:"label"`
	LabelEs string `json:"label_es"`
}

var statusLabels = map[HubStatus]StatusLabel{
	StatusOpen:        {Label: "Open", LabelEs: "Abierto", Color: "open"},
	StatusAtCapacity:  {Label: "At Capacity", LabelEs: "Lleno", Color: "at-capacity"},
	StatusOpenLimited: {Label: "Limited Services", LabelEs: "Servicios Limitados", Color: "at-capacity"},
	StatusClosed:      {Label: "Closed", LabelEs: "Cerrado", Color: "closed"},
	StatusPlannedOpen: {Label: "Opens Soon", LabelEs: "Abre Pronto", Color: "muted"},
}

var serviceLabels = map[Service]ServiceLabel{
	ServiceCooling:   {Icon: "❄️", Label: "Cooling", LabelEs: "Enfriamiento"},
	ServiceHeating:   {Icon: "🔥", Label: "Heating", LabelEs: "Calefacción"},
	ServiceCharging:  {Icon: "🔌", Label: "Charging", LabelEs: "Carga"},
	ServiceWifi:      {Icon: "📶", Label: "Wi-Fi", LabelEs: "Wi-Fi"},
	ServiceWater:     {Icon: "💧", Label: "Water", LabelEs: "Agua"},
	ServiceRestrooms: {Icon: "🚻", Label: "Restrooms", LabelEs: "Baños"},
	ServiceMedical:   {Icon: "🏥", Label: "Medical", LabelEs: "Médico"},
	ServicePetRelief: {Icon: "🐾", Label: "Pet Area", LabelEs: "Área Mascotas"},
	ServiceFood:      {Icon: "🍽️", Label: "Food", LabelEs: "Comida"},
}

// StatusInfo returns display labels for s. Unknown statuses render as closed.
func StatusInfo(s HubStatus) StatusLabel {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return statusLabels[StatusClosed]
}

// ServiceInfo returns display labels for s. Unknown services echo the raw
// value with a generic pin.
func ServiceInfo(s Service) ServiceLabel {
	if l, ok := serviceLabels[s]; ok {
		return l
	}
	return ServiceLabel{Icon: "📍", Label: string(s), LabelEs: string(s)}
}

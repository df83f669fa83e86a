package world

// Position is a grid coordinate. Copied by value, never owned.
type Position struct {
	X int
	Y int
}

// Action is a discrete vehicle action code.
type Action int32

const (
	ActStay Action = iota
	ActUp
	ActDown
	ActRight
	ActLeft

	// ActNum is the size of the discrete action space.
	ActNum = 5
)

// Object kind tags used by the buffer boundary (AddObject, Info).
const (
	KindWall     = -1
	KindLight    = -2
	KindPark     = -3
	KindBuilding = -4
	KindVehicle  = 0
)

// Placement methods accepted by AddObject.
const (
	MethodCustom = "custom"
	MethodRandom = "random"
)

// View tensor channels, in fixed order.
const (
	ChannelWall = iota
	ChannelPark
	ChannelBuilding
	ChannelLightGreen
	ChannelLightRed
	ChannelOther
	ChannelSelf

	// ChannelNum is the channel count of the egocentric view tensor.
	ChannelNum = 7
)

// Park is a static decorative region.
type Park struct {
	Pos    Position
	Width  int
	Height int
}

// Building is a static obstacle region. Every covered cell is rasterized
// as a wall at creation time.
type Building struct {
	Pos    Position
	Width  int
	Height int
}

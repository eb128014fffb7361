package tags

// IFD names
const (
	IFD0       = "IFD0"
	IFD1       = "IFD1"
	ExifIFD    = "ExifIFD"
	GPS        = "GPS"
	InteropIFD = "InteropIFD"
)

// IFD0 tags
const (
	ImageWidth       uint16 = 0x0100
	ImageHeight      uint16 = 0x0101
	ImageDescription uint16 = 0x010E
	Make             uint16 = 0x010F
	Model            uint16 = 0x0110
	Orientation      uint16 = 0x0112
	XResolution      uint16 = 0x011A
	YResolution      uint16 = 0x011B
	ResolutionUnit   uint16 = 0x0128
	Software         uint16 = 0x0131
	ModifyDate       uint16 = 0x0132
	Artist           uint16 = 0x013B
	ThumbnailOffset  uint16 = 0x0201
	ThumbnailLength  uint16 = 0x0202
	YCbCrPositioning uint16 = 0x0213
	Copyright        uint16 = 0x8298
	ExifIFDPointer   uint16 = 0x8769
	GPSIFDPointer    uint16 = 0x8825
)

// ExifIFD tags
const (
	ExposureTime         uint16 = 0x829A
	FNumber              uint16 = 0x829D
	ExposureProgram      uint16 = 0x8822
	ISO                  uint16 = 0x8827
	ExifVersion          uint16 = 0x9000
	DateTimeOriginal     uint16 = 0x9003
	CreateDate           uint16 = 0x9004
	OffsetTime           uint16 = 0x9010
	OffsetTimeOriginal   uint16 = 0x9011
	ShutterSpeedValue    uint16 = 0x9201
	ApertureValue        uint16 = 0x9202
	ExposureCompensation uint16 = 0x9204
	MaxApertureValue     uint16 = 0x9205
	MeteringMode         uint16 = 0x9207
	Flash                uint16 = 0x9209
	FocalLength          uint16 = 0x920A
	MakerNote            uint16 = 0x927C
	UserComment          uint16 = 0x9286
	SubSecTimeOriginal   uint16 = 0x9291
	ColorSpace           uint16 = 0xA001
	ExifImageWidth       uint16 = 0xA002
	ExifImageHeight      uint16 = 0xA003
	InteropIFDPointer    uint16 = 0xA005
	FocalLengthIn35mm    uint16 = 0xA405
	LensMake             uint16 = 0xA433
	LensModel            uint16 = 0xA434
)

// OrientationNames labels the eight EXIF orientation values
var OrientationNames = map[string]string{
	"1": "Horizontal (normal)",
	"2": "Mirror horizontal",
	"3": "Rotate 180",
	"4": "Mirror vertical",
	"5": "Mirror horizontal and rotate 270 CW",
	"6": "Rotate 90 CW",
	"7": "Mirror horizontal and rotate 90 CW",
	"8": "Rotate 270 CW",
}

// FlashNames labels the Flash tag bit patterns
var FlashNames = map[string]string{
	"0":  "No Flash",
	"1":  "Fired",
	"5":  "Fired, Return not detected",
	"7":  "Fired, Return detected",
	"8":  "On, Did not fire",
	"9":  "On, Fired",
	"13": "On, Return not detected",
	"15": "On, Return detected",
	"16": "Off, Did not fire",
	"20": "Off, Did not fire, Return not detected",
	"24": "Auto, Did not fire",
	"25": "Auto, Fired",
	"29": "Auto, Fired, Return not detected",
	"31": "Auto, Fired, Return detected",
	"32": "No flash function",
	"48": "Off, No flash function",
	"65": "Fired, Red-eye reduction",
	"69": "Fired, Red-eye reduction, Return not detected",
	"71": "Fired, Red-eye reduction, Return detected",
	"73": "On, Red-eye reduction",
	"77": "On, Red-eye reduction, Return not detected",
	"79": "On, Red-eye reduction, Return detected",
	"80": "Off, Red-eye reduction",
	"88": "Auto, Did not fire, Red-eye reduction",
	"89": "Auto, Fired, Red-eye reduction",
	"93": "Auto, Fired, Red-eye reduction, Return not detected",
	"95": "Auto, Fired, Red-eye reduction, Return detected",
}

func init() {
	RegisterTagTable(IFD0, map[uint16]TagDef{
		ImageWidth:       {Name: "ImageWidth", Description: "Image Width", Format: "int32u"},
		ImageHeight:      {Name: "ImageHeight", Description: "Image Height", Format: "int32u"},
		ImageDescription: {Name: "ImageDescription", Description: "Image Description", Format: "string"},
		Make:             {Name: "Make", Description: "Camera manufacturer", Format: "string"},
		Model:            {Name: "Model", Description: "Camera model", Format: "string"},
		Orientation:      {Name: "Orientation", Description: "Image orientation", Format: "int16u", Values: OrientationNames},
		XResolution:      {Name: "XResolution", Description: "X Resolution", Format: "rational64u"},
		YResolution:      {Name: "YResolution", Description: "Y Resolution", Format: "rational64u"},
		ResolutionUnit: {Name: "ResolutionUnit", Description: "Resolution Unit", Format: "int16u",
			Values: map[string]string{"1": "None", "2": "inches", "3": "cm"}},
		Software:        {Name: "Software", Description: "Software", Format: "string"},
		ModifyDate:      {Name: "ModifyDate", Description: "Date/Time Modified", Format: "string"},
		Artist:          {Name: "Artist", Description: "Artist", Format: "string"},
		ThumbnailOffset: {Name: "ThumbnailOffset", Description: "Thumbnail Offset", Format: "int32u"},
		ThumbnailLength: {Name: "ThumbnailLength", Description: "Thumbnail Length", Format: "int32u"},
		YCbCrPositioning: {Name: "YCbCrPositioning", Description: "Y Cb Cr Positioning", Format: "int16u",
			Values: map[string]string{"1": "Centered", "2": "Co-sited"}},
		Copyright:      {Name: "Copyright", Description: "Copyright", Format: "string"},
		ExifIFDPointer: {Name: "ExifOffset", Description: "Exif IFD pointer", Format: "int32u"},
		GPSIFDPointer:  {Name: "GPSInfo", Description: "GPS IFD pointer", Format: "int32u"},
	})

	RegisterTagTable(ExifIFD, map[uint16]TagDef{
		ExposureTime: {Name: "ExposureTime", Description: "Exposure Time", Format: "rational64u"},
		FNumber:      {Name: "FNumber", Description: "F Number", Format: "rational64u"},
		ExposureProgram: {Name: "ExposureProgram", Description: "Exposure Program", Format: "int16u",
			Values: map[string]string{
				"0": "Not Defined", "1": "Manual", "2": "Program AE", "3": "Aperture-priority AE",
				"4": "Shutter speed priority AE", "5": "Creative (Slow speed)", "6": "Action (High speed)",
				"7": "Portrait", "8": "Landscape",
			}},
		ISO:                  {Name: "ISO", Description: "ISO", Format: "int16u"},
		ExifVersion:          {Name: "ExifVersion", Description: "Exif Version", Format: "undef"},
		DateTimeOriginal:     {Name: "DateTimeOriginal", Description: "Date/Time Original", Format: "string"},
		CreateDate:           {Name: "CreateDate", Description: "Date/Time Digitized", Format: "string"},
		OffsetTime:           {Name: "OffsetTime", Description: "Time Zone", Format: "string"},
		OffsetTimeOriginal:   {Name: "OffsetTimeOriginal", Description: "Time Zone of Original", Format: "string"},
		ShutterSpeedValue:    {Name: "ShutterSpeedValue", Description: "Shutter Speed (APEX)", Format: "rational64s"},
		ApertureValue:        {Name: "ApertureValue", Description: "Aperture (APEX)", Format: "rational64u"},
		ExposureCompensation: {Name: "ExposureCompensation", Description: "Exposure Bias", Format: "rational64s"},
		MaxApertureValue:     {Name: "MaxApertureValue", Description: "Max Aperture (APEX)", Format: "rational64u"},
		MeteringMode: {Name: "MeteringMode", Description: "Metering Mode", Format: "int16u",
			Values: map[string]string{
				"0": "Unknown", "1": "Average", "2": "Center-weighted average", "3": "Spot",
				"4": "Multi-spot", "5": "Multi-segment", "6": "Partial", "255": "Other",
			}},
		Flash:              {Name: "Flash", Description: "Flash", Format: "int16u", Values: FlashNames},
		FocalLength:        {Name: "FocalLength", Description: "Focal Length", Format: "rational64u"},
		MakerNote:          {Name: "MakerNote", Description: "Maker Note", Format: "undef"},
		UserComment:        {Name: "UserComment", Description: "User Comment", Format: "undef"},
		SubSecTimeOriginal: {Name: "SubSecTimeOriginal", Description: "Sub-second Time Original", Format: "string"},
		ColorSpace: {Name: "ColorSpace", Description: "Color Space", Format: "int16u",
			Values: map[string]string{"1": "sRGB", "2": "Adobe RGB", "65535": "Uncalibrated"}},
		ExifImageWidth:    {Name: "ExifImageWidth", Description: "Exif Image Width", Format: "int32u"},
		ExifImageHeight:   {Name: "ExifImageHeight", Description: "Exif Image Height", Format: "int32u"},
		InteropIFDPointer: {Name: "InteropOffset", Description: "Interoperability IFD pointer", Format: "int32u"},
		FocalLengthIn35mm: {Name: "FocalLengthIn35mmFormat", Description: "Focal Length In 35mm Format", Format: "int16u"},
		LensMake:          {Name: "LensMake", Description: "Lens Make", Format: "string"},
		LensModel:         {Name: "LensModel", Description: "Lens Model", Format: "string"},
	})

	RegisterTagTable(InteropIFD, map[uint16]TagDef{
		0x0001: {Name: "InteropIndex", Description: "Interoperability Index", Format: "string"},
		0x0002: {Name: "InteropVersion", Description: "Interoperability Version", Format: "undef"},
	})

	RegisterTagTable(GPS, map[uint16]TagDef{
		0x0000: {Name: "GPSVersionID", Description: "GPS Version ID", Format: "int8u"},
		0x0001: {Name: "GPSLatitudeRef", Description: "GPS Latitude Ref", Format: "string",
			Values: map[string]string{"N": "North", "S": "South"}},
		0x0002: {Name: "GPSLatitude", Description: "GPS Latitude", Format: "rational64u"},
		0x0003: {Name: "GPSLongitudeRef", Description: "GPS Longitude Ref", Format: "string",
			Values: map[string]string{"E": "East", "W": "West"}},
		0x0004: {Name: "GPSLongitude", Description: "GPS Longitude", Format: "rational64u"},
		0x0005: {Name: "GPSAltitudeRef", Description: "GPS Altitude Ref", Format: "int8u",
			Values: map[string]string{"0": "Above Sea Level", "1": "Below Sea Level"}},
		0x0006: {Name: "GPSAltitude", Description: "GPS Altitude", Format: "rational64u"},
		0x0007: {Name: "GPSTimeStamp", Description: "GPS Time Stamp", Format: "rational64u"},
		0x001D: {Name: "GPSDateStamp", Description: "GPS Date Stamp", Format: "string"},
	})
}

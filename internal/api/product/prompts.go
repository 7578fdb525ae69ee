package product

const ideasPrompt = `สร้างรายการคำค้นหาสินค้าสำหรับนักท่องเที่ยวที่จะไปเที่ยวขอนแก่น
สินค้าต้องหาซื้อได้ทั่วไปบน Lazada ไม่ต้องใส่คำว่าขอนแก่นในคำค้นหา

ตอบเป็น JSON array ของคำค้นหาภาษาไทยเท่านั้น เช่น
["รองเท้าเดินป่า", "หมวกกันแดด", "เสื้อกันฝน"]

หมวดที่ควรครอบคลุม:
- อุปกรณ์เดินทางและเดินป่า
- เครื่องแต่งกายสำหรับการเดินทาง
- อุปกรณ์ความปลอดภัย เช่น ยากันยุง ชุดปฐมพยาบาล ครีมกันแดด
- ของใช้สำหรับปิคนิกและตั้งแคมป์
- ของที่ระลึกและงานหัตถกรรม

ให้ 8-10 คำค้นหา`

// FallbackIdeas is served when the model is unavailable or answers with
// something that is not a JSON array of strings.
var FallbackIdeas = []string{
	"อุปกรณ์เดินทาง",
	"รองเท้าเดินป่า",
	"หมวกกันแดด",
	"กระเป๋าเดินทาง",
	"เสื้อกันฝน",
	"ครีมกันแดด",
	"ขวดน้ำเดินทาง",
	"อุปกรณ์ปิคนิก",
}

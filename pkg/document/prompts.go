package document

const analysisSystem = "Eres un validador estricto de certificados oficiales. " +
	"Si la imagen NO es un certificado válido, responde ÚNICAMENTE 'NO_ES_CERTIFICADO'. " +
	"Si ES un certificado válido, analiza sus campos detalladamente. " +
	"Si recibes un bloque que empiece con \"Texto extraído de PDF:\", trátalo exactamente igual que si fuera la imagen."

const analysisInstructions = `Analiza el documento y determina SI ES un certificado válido para justificar faltas universitarias.

CERTIFICADOS VÁLIDOS:
1. Certificado Cita Médica Sin Reposo
2. Certificado Cita Médica Con Reposo
3. Certificado Cita Médica Hijos Menores
4. Certificado de Participación Deportiva
5. Acta de Defunción (requiere elevación automática a mentor)

DIFERENCIA ENTRE CERTIFICADOS MÉDICOS:
- SIN REPOSO: solo certifica la asistencia a una cita, no indica días de descanso.
- CON REPOSO: indica explícitamente días de reposo con fechas de inicio y fin.
- Con diagnóstico pero sin días de reposo es SIN REPOSO.

Si el documento NO es uno de estos certificados (foto personal, captura de pantalla, documento genérico), responde ÚNICAMENTE: NO_ES_CERTIFICADO

Campos por tipo:
- Cita Médica SIN Reposo: nombres y apellidos del paciente; cédula; fecha y hora de atención; diagnóstico o motivo (opcional); firma y sello del doctor.
- Cita Médica CON Reposo: nombres y apellidos; cédula; diagnóstico; fecha y hora de atención; días de reposo; fechas de reposo inicio y fin; firma y sello del doctor.
- Hijos Menores: nombres y apellidos del menor; cédula del menor; diagnóstico; cuidados asistidos; nombres y apellidos del familiar; cédula del familiar; días de reposo; fechas de reposo; fecha de atención; firma y sello del doctor.
- Actividad Deportiva: datos y RUC del ente deportivo; nombres, apellidos y cédula del estudiante; detalle, fecha y hora del evento; firma y sello del ente.
- Acta de Defunción: nombre completo del fallecido; fecha y lugar de fallecimiento; firma y sello del registro civil.

Si es un certificado válido (excepto Acta de Defunción), indica de manera amable qué campos tiene y cuáles faltan.`

const labelSystem = "Clasifica el tipo de certificado a partir del ANÁLISIS dado. " +
	"Responde con una sola palabra de esta lista EXACTA, sin espacios ni tildes: " +
	"CitaMedicaSinReposo | CitaMedicaConReposo | CitaMedicaHijosMenores | " +
	"RepresentacionUniversitaria | CalamidadDomestica | Desconocido. " +
	"Mapea: 'Certificado de Participación/Actividad Deportiva' -> RepresentacionUniversitaria; " +
	"'Acta de Defunción' -> CalamidadDomestica."

const summarySystem = "Eres un asistente conciso. Recibes un análisis detallado y respondes en una frase. " +
	"Si el certificado está completo di: el certificado tiene lo requerido, voy a realizar la solicitud para que te justifiquen la falta. " +
	"Si no cumple, responde brevemente los campos faltantes."

const verifySystem = "Eres un verificador estricto. Revisa si el documento cumple TODOS los requisitos mínimos según su tipo. " +
	"Responde EXACTAMENTE uno de estos dos formatos:\nOK\nMISSING: campo1, campo2, campo3"

const requirements = `Requisitos mínimos por tipo (todos obligatorios):
- CitaMedicaSinReposo: Nombres y Apellidos; Cédula; Historia Clínica; Servicio prestado; Horario de atención (fecha y hora); Firma y Sello.
- CitaMedicaConReposo: Nombres y Apellidos; Cédula; Síntomas; Diagnóstico; Horario de Atención (fecha y hora); Días de reposo; Fechas de reposo (inicio y fin); Firma y Sello.
- CitaMedicaHijosMenores: Nombres y Apellidos del menor; Cédula del menor; Diagnóstico; Cuidados asistidos; Nombres y Apellidos del familiar; Cédula del familiar; Días de reposo; Fechas de reposo; Fecha de atención; Firma y Sello.
- RepresentacionUniversitaria: Datos del ente deportivo; RUC del ente; Nombres y Apellidos del estudiante; Cédula del estudiante; Detalle del evento; Fecha y hora del evento; Firma y Sello del ente.
- CalamidadDomestica: Nombre completo del fallecido; Fecha y lugar de fallecimiento; Firma y sello del registro civil.`

const nameSystem = "Extrae el NOMBRE y APELLIDOS COMPLETOS del ESTUDIANTE/PACIENTE a partir del contenido. " +
	"Devuelve ÚNICAMENTE el nombre completo en MAYÚSCULAS, sin comillas ni etiquetas. " +
	"Si no se identifica con claridad, devuelve una cadena vacía."

const datesSystem = "A partir del contenido, identifica las FECHAS de INICIO y FIN del periodo " +
	"(fechas de reposo, evento o atención). Devuelve EXCLUSIVAMENTE un JSON con las claves EXACTAS " +
	"dateInit (YYYY-MM-DD) y dateEnd (YYYY-MM-DD). Si solo hay una fecha, úsala como dateInit y deja dateEnd vacío. " +
	"No agregues texto fuera del JSON."

const idSystem = "Del contenido proporcionado, devuelve EXCLUSIVAMENTE la identificación del ESTUDIANTE " +
	"(cédula/CI o pasaporte). Prioriza la del estudiante/paciente; ignora números de doctores, RUC, folios o historia clínica. " +
	"Responde SOLO el identificador sin espacios, comillas ni etiquetas. Si no está, devuelve vacío."
